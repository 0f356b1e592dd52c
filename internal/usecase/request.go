package usecase

import "writer-example/internal/domain"

const ExampleModel = "palmyra-x-004"

// ExampleRequest returns the fixed product-description conversation. Each
// call returns a fresh slice.
func ExampleRequest() domain.ChatRequest {
	return domain.ChatRequest{
		Model: ExampleModel,
		Messages: []domain.ChatMessage{
			{
				Role:    domain.RoleUser,
				Content: "You are an expert at writing concise product descriptions for an E-Commerce Retailer",
			},
			{
				Role:    domain.RoleAssistant,
				Content: "Okay, great I can help write these descriptions. Do you have a specific product in mind?",
			},
			{
				Role:    domain.RoleUser,
				Content: "Please write a one sentence product description for a cozy, stylish sweater suitable for both casual and formal occasions",
			},
		},
	}
}
