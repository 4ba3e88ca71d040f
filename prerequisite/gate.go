package prerequisite

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const cleanupTimeout = 30 * time.Second

// Gate decides whether work items may start on a node by running the
// prerequisite script of their job on that node.
type Gate struct {
	spec   Spec
	config Config
}

func New(spec Spec, config Config) (*Gate, error) {
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("invalid prerequisites: %w", err)
	}
	if err := Validate(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	interpreter, err := ParseInterpreter(string(spec.Interpreter))
	if err != nil {
		return nil, fmt.Errorf("invalid prerequisites: %w", err)
	}
	spec.Interpreter = interpreter

	return &Gate{
		spec:   spec,
		config: config.withDefaults(),
	}, nil
}

func (g *Gate) Spec() Spec {
	return g.spec
}

// Check evaluates the prerequisites of item on node.
//
// A nil cause means the item is admitted. Any failure to materialize, launch or
// complete the script results in BecausePrerequisitesArentMet; the details only
// go to the logs. The returned error is non-nil only when ctx is cancelled, in
// which case the evaluation is aborted (the script file is still removed).
func (g *Gate) Check(ctx context.Context, node Node, item WorkItem) (CauseOfBlockage, error) {
	root, ok := node.RootPath()
	if !ok {
		return BecauseNodeIsOffline{Node: node.Name()}, nil
	}

	log := g.config.Logger.With("node", node.Name(), "attempt", newAttemptID())
	if platform := node.Platform(); platform != g.spec.Interpreter.Platform() {
		log.Warn("Interpreter does not target the node platform", "interpreter", g.spec.Interpreter, "platform", platform)
	}

	env := CollectEnvironment(item)

	if err := g.run(ctx, node, root, env, log); err != nil {
		if ctx.Err() != nil {
			log.Info("Prerequisite check aborted", "error", err)
			return nil, fmt.Errorf("prerequisite check on '%s' aborted: %w", node.Name(), ctx.Err())
		}

		log.Warn("Prerequisites are not met", "error", err)
		return BecausePrerequisitesArentMet{Node: node.Name()}, nil
	}

	log.Info("Prerequisites are met")
	return nil, nil
}

func (g *Gate) run(ctx context.Context, node Node, root string, env map[string]string, log *slog.Logger) error {
	path, err := CreateScriptFile(ctx, node, root, g.config.FilePrefix, g.spec.Script, log)
	if err != nil {
		log.Warn("Unable to produce a script file", "error", err)
		return err
	}

	// Uses context.Background() so cleanup isn't skipped if ctx is already cancelled
	defer func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
		defer cancel()

		if err := node.Delete(cleanupCtx, path); err != nil {
			log.Warn("Unable to delete script file", "path", path, "error", err)
		} else {
			log.Debug("Deleted script file", "path", path)
		}
	}()

	exitCode, err := Execute(ctx, node, CommandLine(path, node.Platform()), env, root, g.config.Timeout, log)
	if err != nil {
		return err
	}
	if exitCode != 0 {
		return fmt.Errorf("script exited with code %d", exitCode)
	}

	return nil
}
