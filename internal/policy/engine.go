// Package policy evaluates whether a message may be relayed.
package policy

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/v1/rego"
)

// Decisions returned by the message policy.
const (
	DecisionAllow      = "allow"
	DecisionNotFriends = "not_friends"
	DecisionTooLong    = "too_long"
)

// Input is the document the policy is evaluated against.
type Input struct {
	AreFriends bool   `json:"are_friends"`
	Kind       string `json:"kind"`
	Length     int    `json:"length"`
	MaxLength  int    `json:"max_length"`
}

// Engine is the OPA policy engine.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine creates a new policy engine with the given policy content.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.message_policy.decision"),
		rego.Module("message_policy.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// Evaluate returns the policy decision for input.
func (e *Engine) Evaluate(ctx context.Context, input Input) (string, error) {
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return "", fmt.Errorf("failed to evaluate policy: %w", err)
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return "", fmt.Errorf("policy produced no decision")
	}

	s, ok := results[0].Expressions[0].Value.(string)
	if !ok {
		return "", fmt.Errorf("unexpected decision type %T", results[0].Expressions[0].Value)
	}
	return s, nil
}

// DefaultPolicy only lets friends talk, and caps the length of text bodies.
const DefaultPolicy = `
package message_policy

default decision := "allow"

decision := "not_friends" if {
	not input.are_friends
}

decision := "too_long" if {
	input.are_friends
	input.kind == "text"
	input.max_length > 0
	input.length > input.max_length
}
`
