package middlewares

import "context"

const subjectKey ctxKey = 1

func WithSubject(ctx context.Context, sub string) context.Context {
	return context.WithValue(ctx, subjectKey, sub)
}

// SubjectFrom returns the authenticated token subject, if any.
func SubjectFrom(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(subjectKey).(string)
	return v, ok && v != ""
}
