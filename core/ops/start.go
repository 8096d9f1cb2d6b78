package ops

import "context"

const welcomeText = "👋 Welcome to Lead Manager Bot!\n\n" +
	"Use /leads to see expired leads\n" +
	"Use /help for more info"

// StartOp greets the operator.
type StartOp struct{}

func (s *StartOp) Name() string        { return "start" }
func (s *StartOp) Description() string { return "Start the bot" }

func (s *StartOp) Execute(_ context.Context, _ int64, _ string) (string, error) {
	return welcomeText, nil
}
