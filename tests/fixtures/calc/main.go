// Command calc is the conformance fixture for the integration suite: one
// tool per execution mode, compiled and driven as a real subprocess.
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/graft"
	"github.com/aretw0/graft/pkg/domain"
	"github.com/aretw0/graft/pkg/protocol"
	"github.com/aretw0/graft/pkg/sampling"
)

type addInput struct {
	A int `json:"a" jsonschema:"description=First addend"`
	B int `json:"b" jsonschema:"description=Second addend"`
}

type countInput struct {
	To int `json:"to" jsonschema:"description=Count upper bound"`
}

type chatInput struct {
	Topic string `json:"topic" jsonschema:"description=Optional conversation topic"`
}

type askInput struct {
	Question string `json:"question" jsonschema:"description=Question for the calling model"`
}

func main() {
	app := graft.New("calc", graft.WithVersion("9.9.9"))

	graft.Tool(app, "add", "Add two integers", func(_ context.Context, in addInput) (any, error) {
		return map[string]any{"sum": in.A + in.B}, nil
	})

	graft.StreamTool(app, "count", "Count with progress", func(_ context.Context, in countInput, st *protocol.Stream) error {
		for i := 1; i <= in.To; i++ {
			if err := st.Progress(fmt.Sprintf("at %d", i), i*100/in.To); err != nil {
				return err
			}
		}
		return st.Result(domain.Success(map[string]any{"counted": in.To}))
	})

	graft.SessionTool(app, "chat", "Echo until quit", func(_ context.Context, _ chatInput, sess *protocol.Session) error {
		reply, ok := sess.Start("ready")
		for ok {
			if action, _ := reply["action"].(string); action == "quit" {
				sess.End()
				return nil
			}
			text, _ := reply["text"].(string)
			reply, ok = sess.Send(map[string]any{"type": "echo", "text": "you said: " + text})
		}
		return nil
	})

	graft.Tool(app, "ask", "Ask the calling model", func(ctx context.Context, in askInput) (any, error) {
		sampler, ok := sampling.FromContext(ctx)
		if !ok {
			return nil, domain.NewError(domain.CodeDependency, "No sampling channel configured")
		}
		answer, err := sampler.Sample(ctx, in.Question, sampling.WithMaxTokens(50))
		if err != nil {
			return nil, err
		}
		return map[string]any{"answer": answer}, nil
	})

	if err := app.Run(); err != nil {
		log.Fatalf("calc: %v", err)
	}
}
