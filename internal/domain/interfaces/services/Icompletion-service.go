package Iservices

import "context"

type ICompletionService interface {
	Complete(ctx context.Context, systemPrompt string, userPrompt string) (string, error)
}
