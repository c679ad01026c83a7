package prompts

import (
	"context"
	_ "embed"
)

//go:embed template/counselor_prompt.txt
var counselorSystemPrompt string

// ClosingNotice is appended to the counselor context on the turn that
// triggers the analysis stage, so the model wraps the conversation up
// instead of asking another question.
const ClosingNotice = "이번 응답에서는 새로운 질문을 하지 말고, 지금까지 나눈 이야기를 따뜻하게 정리하며 대화를 마무리해 주세요. 곧 내담자에게 맞는 책을 추천할 것이라고 자연스럽게 안내하세요."

// RenderCounselorSystem renders the counselor system prompt via the Eino
// prompt component. This triggers Prompt callbacks and returns the final
// system prompt string.
func RenderCounselorSystem(ctx context.Context) (string, error) {
	return renderSystem(ctx, counselorSystemPrompt, "counselor")
}
