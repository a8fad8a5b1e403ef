package assistant

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

type fakeConverse struct {
	input *bedrockruntime.ConverseInput
	out   *bedrockruntime.ConverseOutput
	err   error
}

func (f *fakeConverse) Converse(_ context.Context, in *bedrockruntime.ConverseInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error) {
	f.input = in
	return f.out, f.err
}

func textOutput(text string) *bedrockruntime.ConverseOutput {
	return &bedrockruntime.ConverseOutput{
		Output: &brtypes.ConverseOutputMemberMessage{Value: brtypes.Message{
			Role:    brtypes.ConversationRoleAssistant,
			Content: []brtypes.ContentBlock{&brtypes.ContentBlockMemberText{Value: text}},
		}},
		StopReason: brtypes.StopReasonEndTurn,
		Usage:      &brtypes.TokenUsage{InputTokens: aws.Int32(10), OutputTokens: aws.Int32(2), TotalTokens: aws.Int32(12)},
	}
}

func TestBedrockClientComplete(t *testing.T) {
	api := &fakeConverse{out: textOutput(" YES ")}
	c := NewBedrockClient(api, "anthropic.claude-3-haiku")

	resp, err := c.Complete(context.Background(), LLMRequest{
		System: []string{"be brief"},
		Messages: []ChatMessage{
			{Role: ChatRoleSystem, Content: "extra rule"},
			{Role: ChatRoleUser, Content: "Is Sara a name?"},
		},
		MaxTokens: 5,
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if resp.Text != "YES" || resp.Usage.TotalTokens != 12 || resp.StopReason != "end_turn" {
		t.Fatalf("unexpected response %+v", resp)
	}
	if aws.ToString(api.input.ModelId) != "anthropic.claude-3-haiku" {
		t.Fatalf("unexpected model %q", aws.ToString(api.input.ModelId))
	}
	if len(api.input.System) != 2 || len(api.input.Messages) != 1 {
		t.Fatalf("expected 2 system blocks and 1 message, got %d/%d", len(api.input.System), len(api.input.Messages))
	}
	if api.input.InferenceConfig == nil || aws.ToInt32(api.input.InferenceConfig.MaxTokens) != 5 {
		t.Fatalf("expected max tokens 5")
	}
}

func TestBedrockClientErrors(t *testing.T) {
	c := NewBedrockClient(&fakeConverse{err: errors.New("throttled")}, "m")
	if _, err := c.Complete(context.Background(), LLMRequest{Messages: []ChatMessage{{Role: ChatRoleUser, Content: "hi"}}}); err == nil {
		t.Fatalf("expected converse error")
	}
	c = NewBedrockClient(&fakeConverse{out: textOutput("   ")}, "m")
	if _, err := c.Complete(context.Background(), LLMRequest{Messages: []ChatMessage{{Role: ChatRoleUser, Content: "hi"}}}); !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
	c = NewBedrockClient(&fakeConverse{}, "")
	if _, err := c.Complete(context.Background(), LLMRequest{}); err == nil {
		t.Fatalf("expected missing model error")
	}
	c = NewBedrockClient(&fakeConverse{out: textOutput("x")}, "m")
	if _, err := c.Complete(context.Background(), LLMRequest{Messages: []ChatMessage{{Role: "tool", Content: "x"}}}); err == nil {
		t.Fatalf("expected unsupported role error")
	}
}
