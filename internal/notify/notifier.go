package notify

import "go.uber.org/zap"

// Notifier delivers best-effort notifications after a lifecycle operation has
// committed. Implementations must never block the request path for long and
// must never propagate failures back to the caller; a lost notification does
// not unwind committed work.
type Notifier interface {
	VerificationRequested(email, token string)
	TaskAssigned(email, taskTitle, workspaceName string)
	MemberRemoved(email, workspaceName string)
}

// LogNotifier writes notifications to the structured log. It stands in for a
// real mail sender in development and tests.
type LogNotifier struct {
	log *zap.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) VerificationRequested(email, token string) {
	n.log.Info("verification email requested",
		zap.String("email", email),
		zap.String("token", token),
	)
}

func (n *LogNotifier) TaskAssigned(email, taskTitle, workspaceName string) {
	n.log.Info("task assigned notification",
		zap.String("email", email),
		zap.String("task", taskTitle),
		zap.String("workspace", workspaceName),
	)
}

func (n *LogNotifier) MemberRemoved(email, workspaceName string) {
	n.log.Info("member removed notification",
		zap.String("email", email),
		zap.String("workspace", workspaceName),
	)
}
