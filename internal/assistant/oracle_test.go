package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/wolfman30/clinic-assistant/internal/intent"
)

type stubLLM struct {
	resp LLMResponse
	err  error
	reqs []LLMRequest
}

func (s *stubLLM) Complete(_ context.Context, req LLMRequest) (LLMResponse, error) {
	s.reqs = append(s.reqs, req)
	return s.resp, s.err
}

func TestOracleAsk(t *testing.T) {
	llm := &stubLLM{resp: LLMResponse{Text: "نحن نعمل من 3 حتى 9 مساءً"}}
	o := NewOracle(llm, "عيادة نيو سكن", nil)

	got, err := o.Ask(context.Background(), "متى تفتحون؟", intent.Arabic)
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if got != "نحن نعمل من 3 حتى 9 مساءً" {
		t.Fatalf("unexpected reply %q", got)
	}
	req := llm.reqs[0]
	if len(req.System) != 1 || !strings.Contains(req.System[0], "عيادة نيو سكن") {
		t.Fatalf("expected clinic name in system prompt, got %v", req.System)
	}
	if req.Messages[0].Content != "متى تفتحون؟" {
		t.Fatalf("expected question passed verbatim, got %q", req.Messages[0].Content)
	}
}

func TestOracleAskEnglishPrompt(t *testing.T) {
	llm := &stubLLM{resp: LLMResponse{Text: "We open at 3 PM"}}
	o := NewOracle(llm, "New Skin", nil)
	if _, err := o.Ask(context.Background(), "when do you open?", intent.English); err != nil {
		t.Fatalf("ask: %v", err)
	}
	if !strings.Contains(llm.reqs[0].System[0], "in English") {
		t.Fatalf("expected english prompt, got %q", llm.reqs[0].System[0])
	}
}

func TestOracleAskErrors(t *testing.T) {
	o := NewOracle(&stubLLM{err: errors.New("quota")}, "c", nil)
	if _, err := o.Ask(context.Background(), "hi", intent.Arabic); err == nil {
		t.Fatalf("expected error")
	}
	o = NewOracle(&stubLLM{resp: LLMResponse{Text: "  "}}, "c", nil)
	if _, err := o.Ask(context.Background(), "hi", intent.Arabic); !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
	o = NewOracle(nil, "c", nil)
	if _, err := o.Ask(context.Background(), "hi", intent.Arabic); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestOracleValidateName(t *testing.T) {
	cases := []struct {
		reply string
		want  bool
	}{
		{"YES", true},
		{"yes.", true},
		{"NO", false},
		{"Maybe", false},
	}
	for _, tc := range cases {
		o := NewOracle(&stubLLM{resp: LLMResponse{Text: tc.reply}}, "c", nil)
		got, err := o.ValidateName(context.Background(), "Ahmad Al-Khatib")
		if err != nil {
			t.Fatalf("validate: %v", err)
		}
		if got != tc.want {
			t.Fatalf("reply %q: got %v want %v", tc.reply, got, tc.want)
		}
	}
}

func TestOracleValidateNameSkipsModelForImplausibleInput(t *testing.T) {
	llm := &stubLLM{resp: LLMResponse{Text: "YES"}}
	o := NewOracle(llm, "c", nil)
	for _, in := range []string{"a", "0790000000", "hi!!", "😀😀"} {
		ok, err := o.ValidateName(context.Background(), in)
		if err != nil || ok {
			t.Fatalf("expected %q rejected locally, got %v %v", in, ok, err)
		}
	}
	if len(llm.reqs) != 0 {
		t.Fatalf("model should not be called, got %d calls", len(llm.reqs))
	}
}

func TestOracleValidateNameWithoutModel(t *testing.T) {
	o := NewOracle(nil, "c", nil)
	ok, err := o.ValidateName(context.Background(), "سارة أحمد")
	if err != nil || !ok {
		t.Fatalf("expected local acceptance, got %v %v", ok, err)
	}
}

func TestOracleValidateNamePropagatesError(t *testing.T) {
	o := NewOracle(&stubLLM{err: errors.New("timeout")}, "c", nil)
	if _, err := o.ValidateName(context.Background(), "Sara"); err == nil {
		t.Fatalf("expected error")
	}
}
