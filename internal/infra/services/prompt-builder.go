package services

import "fmt"

const DefaultAssistantName = "KiitGPT"

const (
	documentPersona = "You are %s, an AI assistant for KIIT students. " +
		"Answer queries based on the uploaded document when it is relevant, " +
		"or provide normal responses from general knowledge when it is not.\n\n"
	documentSection = "Uploaded PDF Content:\n\n%s\n\n"
	genericPersona  = "You are %s, an AI assistant for KIIT students. Answer queries as best as you can."
)

type Prompt struct {
	System string
	User   string
}

type PromptBuilder struct {
	AssistantName string
}

func NewPromptBuilder(assistantName string) PromptBuilder {
	if assistantName == "" {
		assistantName = DefaultAssistantName
	}
	return PromptBuilder{AssistantName: assistantName}
}

// Build embeds documentText verbatim in the system prompt when it is non-empty.
func (b PromptBuilder) Build(documentText, userMessage string) Prompt {
	if documentText == "" {
		return Prompt{
			System: fmt.Sprintf(genericPersona, b.AssistantName),
			User:   userMessage,
		}
	}
	return Prompt{
		System: fmt.Sprintf(documentPersona, b.AssistantName) + fmt.Sprintf(documentSection, documentText),
		User:   userMessage,
	}
}
