package service

import (
	"context"

	"github.com/okian/regmatrix/pkg/logger"
)

// Notice variants.
const (
	VariantDefault     = "default"
	VariantDestructive = "destructive"
)

// Notice is a short user-facing message.
type Notice struct {
	Title       string
	Description string
	Variant     string
}

// Notifier shows notices to the user.
type Notifier interface {
	Notify(ctx context.Context, n Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notice)

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, n Notice) { f(ctx, n) }

// logNotifier writes notices to a logger.
type logNotifier struct {
	logger logger.Logger
}

// NewLogNotifier returns a Notifier that logs every notice.
func NewLogNotifier(l logger.Logger) Notifier {
	return &logNotifier{logger: l}
}

func (n *logNotifier) Notify(ctx context.Context, notice Notice) {
	fields := []logger.Field{
		logger.String("title", notice.Title),
		logger.String("description", notice.Description),
	}
	if notice.Variant == VariantDestructive {
		n.logger.Warn(ctx, "notice", fields...)
		return
	}
	n.logger.Info(ctx, "notice", fields...)
}
