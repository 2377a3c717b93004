package utilz

import "context"

// ErrorMapContext is what the engine knows when an issue is raised.
type ErrorMapContext struct {
	// Data is the offending input (nil when the value was absent).
	Data any
	// DefaultError is the message the engine produced.
	DefaultError string
}

// ErrorMap converts an issue into a user-facing message.
type ErrorMap func(issue Issue, ctx ErrorMapContext) string

// MessageContext is handed to message builders.
type MessageContext struct {
	Issue        Issue
	Data         any
	DefaultError string
	// Options lists accepted values for invalid_enum and discriminator issues.
	Options []string
}

// MessageBuilder renders a message for one error code.
type MessageBuilder func(MessageContext) string

// Msg returns a builder that always yields msg.
func Msg(msg string) MessageBuilder {
	return func(MessageContext) string { return msg }
}

// ErrorMapConfig maps an error code to its message. Besides the engine codes
// it accepts CodeRequired, which also covers invalid_type issues raised for an
// absent value.
type ErrorMapConfig map[string]MessageBuilder

// ErrorMapResult bundles the config with the ErrorMap built from it.
type ErrorMapResult struct {
	Config   ErrorMapConfig
	ErrorMap ErrorMap
}

// MakeErrorMap builds an ErrorMap from config. An invalid_type issue whose
// input is nil, whether absent or an explicit null, looks up CodeRequired.
//
//	em := utilz.MakeErrorMap(utilz.ErrorMapConfig{
//	    utilz.CodeRequired:    utilz.Msg("Custom required message"),
//	    utilz.CodeInvalidType: func(c utilz.MessageContext) string { return fmt.Sprintf("%v is an invalid type", c.Data) },
//	})
//	s := utilz.WithErrorMap(dsl.String(), em.ErrorMap)
func MakeErrorMap(config ErrorMapConfig) ErrorMapResult {
	return ErrorMapResult{
		Config: config,
		ErrorMap: func(issue Issue, ctx ErrorMapContext) string {
			code := issue.Code
			if code == CodeInvalidType && ctx.Data == nil {
				code = CodeRequired
			}
			var msg string
			if build, ok := config[code]; ok && build != nil {
				msg = build(messageContext(issue, ctx))
			}
			if msg == "" {
				return ctx.DefaultError
			}
			return msg
		},
	}
}

func messageContext(issue Issue, ctx ErrorMapContext) MessageContext {
	mc := MessageContext{Issue: issue, Data: ctx.Data, DefaultError: ctx.DefaultError}
	switch issue.Code {
	case CodeInvalidEnum, CodeDiscriminatorUnknown:
		mc.Options = issue.Options()
	}
	return mc
}

// WithErrorMap returns a schema whose issue messages are produced by em.
func WithErrorMap[T any](s Schema[T], em ErrorMap) Schema[T] {
	return &errorMapped[T]{inner: s, em: em}
}

type errorMapped[T any] struct {
	inner Schema[T]
	em    ErrorMap
}

func (s *errorMapped[T]) Parse(ctx context.Context, v any) (T, error) {
	out, err := s.inner.Parse(ctx, v)
	if err == nil || s.em == nil {
		return out, err
	}
	iss, ok := AsIssues(err)
	if !ok {
		return out, err
	}
	mapped := make(Issues, len(iss))
	for i, it := range iss {
		it.Message = s.em(it, ErrorMapContext{Data: it.Input, DefaultError: it.Message})
		mapped[i] = it
	}
	return out, mapped
}
