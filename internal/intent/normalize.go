package intent

import (
	"go.uber.org/zap"
)

// MaxCommands bounds how many commands one reply may carry.
const MaxCommands = 5

// Normalizer converts raw model text into commands. It never fails: text
// that yields nothing usable becomes a single Unknown command.
type Normalizer struct {
	log *zap.Logger
}

func NewNormalizer(log *zap.Logger) *Normalizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Normalizer{log: log.Named("intent")}
}

// Normalize returns the first command found in raw.
func (n *Normalizer) Normalize(raw, userMessage string) Command {
	return n.NormalizeAll(raw, userMessage)[0]
}

// NormalizeAll returns between one and MaxCommands commands, in the order the
// model emitted them.
func (n *Normalizer) NormalizeAll(raw, userMessage string) (cmds []Command) {
	defer func() {
		if r := recover(); r != nil {
			n.log.Error("normalizer panic", zap.Any("panic", r))
			cmds = []Command{unknown(userMessage)}
		}
	}()

	for i, el := range extract(raw) {
		cmd, err := decodeStrict(el)
		if err != nil {
			cmd, err = decodePermissive(el)
		}
		if err != nil {
			n.log.Warn("dropping command element",
				zap.Int("index", i),
				zap.Error(err),
				zap.ByteString("element", truncate(el, 300)))
			continue
		}
		cmd.Message = userMessage
		cmds = append(cmds, cmd)
		if len(cmds) == MaxCommands {
			break
		}
	}
	if len(cmds) > 0 {
		return cmds
	}

	if cmd, ok := salvage(raw, userMessage); ok {
		n.log.Info("salvaged command from malformed output", zap.String("intent", string(cmd.Intent)))
		cmd.Message = userMessage
		return []Command{cmd}
	}
	n.log.Info("no command in model output", zap.Int("raw_len", len(raw)))
	return []Command{unknown(userMessage)}
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}
