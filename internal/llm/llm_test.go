package llm

import (
	"context"
	"errors"
	"testing"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

type fakeMessager struct {
	lastParams anthropic.MessageNewParams
	message    *anthropic.Message
	err        error
}

func (f *fakeMessager) New(_ context.Context, params anthropic.MessageNewParams, _ ...option.RequestOption) (*anthropic.Message, error) {
	f.lastParams = params
	if f.err != nil {
		return nil, f.err
	}
	return f.message, nil
}

func TestGenerateConcatenatesTextBlocks(t *testing.T) {
	fake := &fakeMessager{message: &anthropic.Message{
		Content: []anthropic.ContentBlockUnion{
			{Type: "text", Text: "hello "},
			{Type: "text", Text: "world"},
		},
	}}
	caller := &AnthropicCaller{messages: fake}

	got, err := caller.Generate(context.Background(), Request{Prompt: "hi", System: "be brief", MaxTokens: 512})
	if err != nil {
		t.Fatal(err)
	}
	if got != "hello world" {
		t.Fatalf("got %q", got)
	}
	if fake.lastParams.MaxTokens != 512 {
		t.Fatalf("max tokens = %d", fake.lastParams.MaxTokens)
	}
	if len(fake.lastParams.System) != 1 || fake.lastParams.System[0].Text != "be brief" {
		t.Fatalf("system = %+v", fake.lastParams.System)
	}
}

func TestGenerateDefaultMaxTokens(t *testing.T) {
	fake := &fakeMessager{message: &anthropic.Message{}}
	caller := &AnthropicCaller{messages: fake}
	if _, err := caller.Generate(context.Background(), Request{Prompt: "hi"}); err != nil {
		t.Fatal(err)
	}
	if fake.lastParams.MaxTokens != defaultMaxTokens {
		t.Fatalf("max tokens = %d", fake.lastParams.MaxTokens)
	}
	if len(fake.lastParams.System) != 0 {
		t.Fatalf("system should be empty, got %+v", fake.lastParams.System)
	}
}

func TestGenerateError(t *testing.T) {
	caller := &AnthropicCaller{messages: &fakeMessager{err: errors.New("overloaded")}}
	if _, err := caller.Generate(context.Background(), Request{Prompt: "hi"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestNewAnthropicCallerUsesCreator(t *testing.T) {
	orig := newAnthropicClient
	defer func() { newAnthropicClient = orig }()

	var gotKey string
	fake := &fakeMessager{message: &anthropic.Message{}}
	newAnthropicClient = func(apiKey string) AnthropicMessager {
		gotKey = apiKey
		return fake
	}

	caller := NewAnthropicCaller("sk-test")
	if gotKey != "sk-test" {
		t.Fatalf("api key = %q", gotKey)
	}
	if _, err := caller.Generate(context.Background(), Request{Prompt: "hi"}); err != nil {
		t.Fatal(err)
	}
}
