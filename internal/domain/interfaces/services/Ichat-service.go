package Iservices

import "context"

type IChatService interface {
	HandleTurn(ctx context.Context, message string) (string, error)
}
