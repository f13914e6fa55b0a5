package research

import (
	"fmt"
	"strings"
)

const therapySystemPrompt = `You are a world-class pharmaceutical consultant specializing in therapy area analysis and forecasting.
You have deep expertise in disease pathology, treatment algorithms, biomarkers, and patient journey mapping.
Provide comprehensive, accurate, and structured analysis suitable for pharmaceutical forecasting models.`

const funnelSystemPrompt = `You are a pharmaceutical forecasting expert specializing in patient flow modeling and market analysis.
Create detailed patient flow funnels suitable for pharmaceutical forecasting models based on therapy area analysis.`

const competitiveSystemPrompt = "You are a pharmaceutical competitive intelligence analyst with expertise in market dynamics and competitive positioning."

const regulatorySystemPrompt = "You are a regulatory affairs expert specializing in pharmaceutical approvals and market access."

const riskSystemPrompt = "You are a pharmaceutical risk assessment expert specializing in clinical, regulatory, and commercial risk analysis."

const scenarioSystemPrompt = "You are a pharmaceutical forecasting expert specializing in scenario modeling and market projections."

func therapyPrompt(therapyArea, productName string) string {
	productInfo := ""
	if productName != "" {
		productInfo = fmt.Sprintf(" for the product '%s'", productName)
	}
	return fmt.Sprintf(`Please provide a comprehensive analysis of the %s therapy area%s.

Structure your response in exactly 5 sections with clear headers:

## DISEASE SUMMARY
[Provide overview of the disease/condition, epidemiology, prevalence, and key clinical characteristics]

## STAGING
[Detail the disease staging system, progression stages, and clinical classifications used]

## BIOMARKERS
[List key biomarkers, diagnostic markers, prognostic indicators, and companion diagnostics]

## TREATMENT ALGORITHM
[Describe current treatment pathways, standard of care, decision points, and treatment sequencing]

## PATIENT JOURNEY
[Map the complete patient journey from symptoms to diagnosis to treatment and follow-up care]

Focus on current medical standards and include relevant clinical data where appropriate.`, therapyArea, productInfo)
}

func funnelPrompt(therapyArea string, analysis *TherapyAreaAnalysis) string {
	return fmt.Sprintf(`Based on the following therapy area analysis for %s, create a comprehensive patient flow funnel suitable for pharmaceutical forecasting:

THERAPY AREA: %s
DISEASE SUMMARY: %s...
TREATMENT ALGORITHM: %s...
PATIENT JOURNEY: %s...

Please provide your response in exactly this JSON structure:

{
    "funnel_stages": [
        {
            "stage": "Total Population at Risk",
            "description": "Overall population that could develop this condition",
            "percentage": "100%%",
            "notes": "Base population estimates"
        },
        {
            "stage": "Disease Incidence/Prevalence",
            "description": "Population that develops or has the condition",
            "percentage": "X%%",
            "notes": "Epidemiological data"
        },
        {
            "stage": "Diagnosis Rate",
            "description": "Patients who get properly diagnosed",
            "percentage": "X%%",
            "notes": "Diagnosis challenges and rates"
        },
        {
            "stage": "Treatment Eligible",
            "description": "Diagnosed patients eligible for treatment",
            "percentage": "X%%",
            "notes": "Contraindications and eligibility criteria"
        },
        {
            "stage": "Treated Patients",
            "description": "Patients actually receiving treatment",
            "percentage": "X%%",
            "notes": "Treatment uptake and access"
        },
        {
            "stage": "Target Patient Population",
            "description": "Specific target for your therapy/product",
            "percentage": "X%%",
            "notes": "Specific targeting criteria"
        }
    ],
    "total_addressable_population": "Detailed TAM analysis with numbers and rationale",
    "forecasting_notes": "Key assumptions, market dynamics, competitive landscape considerations, and forecasting methodology recommendations"
}

Fill in realistic percentages and detailed descriptions based on current medical literature and market data for %s.`,
		therapyArea, therapyArea,
		truncateText(analysis.DiseaseSummary, 500),
		truncateText(analysis.TreatmentAlgorithm, 500),
		truncateText(analysis.PatientJourney, 500),
		therapyArea)
}

func competitivePrompt(therapyArea string) string {
	return fmt.Sprintf(`Conduct a comprehensive competitive analysis for %s therapy area.

Please provide a structured analysis covering:

1. MAJOR COMPETITORS: List the top 5-7 companies/products in this space with:
   - Company name
   - Key products/drugs
   - Estimated market share
   - Main strengths
   - Key weaknesses

2. MARKET DYNAMICS: Current market trends, growth drivers, challenges

3. PIPELINE ANALYSIS: Key drugs in development (Phase II/III)

4. COMPETITIVE POSITIONING: How different players differentiate

5. UPCOMING CATALYSTS: Key events, approvals, patent expiries in next 2 years

Be specific with actual company names, drug names, and real market data where possible.
Focus on providing actionable competitive intelligence.`, therapyArea)
}

func regulatoryPrompt(therapyArea string) string {
	return fmt.Sprintf(`Provide comprehensive regulatory intelligence for %s including:

1. Key regulatory pathways (FDA, EMA, other major markets)
2. Recent approvals and rejections in this space
3. Regulatory trends and guidance updates
4. Timeline expectations for new therapies
5. Market access considerations and reimbursement landscape

Structure as JSON with these sections: pathways, recent_activity, trends, timelines, market_access`, therapyArea)
}

func riskPrompt(therapyArea string) string {
	return fmt.Sprintf(`Based on the therapy area analysis for %s, assess key risks across:

1. Clinical Risks (efficacy, safety, trial design, endpoints)
2. Regulatory Risks (approval pathways, requirements, precedents)
3. Commercial Risks (competition, market access, pricing pressure)
4. Operational Risks (manufacturing, supply chain, partnerships)
5. Market Risks (market size, adoption, reimbursement)

For each category, provide: high/medium/low risk level, key factors, mitigation strategies
Structure as JSON with risk categories and overall risk score (1-10)`, therapyArea)
}

func scenarioPrompt(therapyArea string, scenarios []string) string {
	return fmt.Sprintf(`Create detailed forecasting scenarios for %s across %v.

For each scenario (%s), provide:
1. Key assumptions (market penetration, pricing, competition)
2. 6-year revenue projections (2024-2029) in millions USD
3. Peak sales estimates and timing
4. Market share trajectory
5. Key success/failure factors

Structure as JSON with scenario names as keys, each containing:
- assumptions: list of key assumptions
- projections: array of 6 annual revenue numbers
- peak_sales: number and year
- market_share_trajectory: array of 6 percentages
- key_factors: list of critical success factors`,
		therapyArea, scenarios, strings.Join(scenarios, ", "))
}
