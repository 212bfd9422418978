// Package workflow runs one chat turn: route the input to a skill, run it,
// and persist what it produced.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/drafte-app/drafte-backend/internal/projects/domain"
	"github.com/drafte-app/drafte-backend/internal/projects/lock"
	"github.com/drafte-app/drafte-backend/internal/projects/service"
	"github.com/drafte-app/drafte-backend/internal/skills/chat"
	"github.com/drafte-app/drafte-backend/internal/skills/content"
	"github.com/drafte-app/drafte-backend/internal/skills/discovery"
	"github.com/drafte-app/drafte-backend/internal/skills/router"
)

const (
	DefaultTimeout = 3 * time.Minute
	lockMargin     = 30 * time.Second
)

type Deps struct {
	Projects  service.ProjectStore
	Messages  service.MessageStore
	Resolver  *service.ResolutionService
	Locker    lock.Locker
	Router    *router.Router
	Chat      *chat.Skill
	Discovery *discovery.Skill
	Content   *content.Skill
	Log       *zap.Logger
	// Timeout bounds a whole turn, independent of the client connection.
	Timeout time.Duration
}

type Workflow struct {
	d     Deps
	graph *Graph
	log   *zap.Logger
}

func New(d Deps) *Workflow {
	if d.Timeout <= 0 {
		d.Timeout = DefaultTimeout
	}
	if d.Locker == nil {
		d.Locker = lock.NewMemoryLocker()
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	w := &Workflow{d: d, log: d.Log}
	w.graph = NewGraph(NodeRouter).
		AddNode(NodeRouter, w.routeNode).
		AddNode(NodeChat, w.chatNode).
		AddNode(NodeDiscovery, w.discoveryNode).
		AddNode(NodeContent, w.contentNode).
		AddEdge(NodeRouter, func(st *State) string {
			switch st.SelectedSkill {
			case router.SkillDiscovery:
				return NodeDiscovery
			case router.SkillContent:
				return NodeContent
			}
			return NodeChat
		})
	return w
}

// Run processes one turn for st.ProjectID and reports progress on em. Exactly
// one terminal event (chat_done or error) is emitted. Cancelling ctx does not
// stop the turn; only the configured timeout does.
func (w *Workflow) Run(ctx context.Context, st State, em Emitter) (*State, error) {
	out := newStream(em)
	log := w.log.With(zap.String("project_id", st.ProjectID), zap.String("user_id", st.UserID))

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.d.Timeout)
	defer cancel()

	release, err := w.d.Locker.Acquire(ctx, st.ProjectID, w.d.Timeout+lockMargin)
	if err != nil {
		if errors.Is(err, lock.ErrHeld) {
			out.fail(domain.ErrProjectBusy.Error())
			return &st, domain.ErrProjectBusy
		}
		log.Error("acquire project lock failed", zap.Error(err))
		out.fail(GenericError)
		return &st, err
	}
	defer release()

	if err := w.turn(ctx, &st, out); err != nil {
		log.Error("workflow failed", zap.String("skill", string(st.SelectedSkill)), zap.Error(err))
		out.fail(GenericError)
		return &st, err
	}
	out.finish()
	return &st, nil
}

func (w *Workflow) turn(ctx context.Context, st *State, out *stream) error {
	p, err := w.d.Projects.Get(ctx, st.ProjectID)
	if err != nil {
		return fmt.Errorf("load project: %w", err)
	}
	if p.UserID != st.UserID {
		return domain.ErrForbidden
	}
	st.Project = p
	st.Status = p.Status
	st.PriorSkill = priorSkill(p)

	history, err := w.d.Messages.List(ctx, st.ProjectID)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	if repeatsLast(history, st.Input) {
		history = history[:len(history)-1]
	} else if _, err := w.d.Messages.Append(ctx, st.ProjectID, domain.RoleUser, st.Input); err != nil {
		return fmt.Errorf("persist user message: %w", err)
	}
	st.History = toLLM(history)

	if err := w.graph.Run(ctx, st, out); err != nil {
		return err
	}

	if st.Discovery != nil {
		if err := w.resolve(ctx, st); err != nil {
			return err
		}
	}
	if st.Reply != "" {
		if _, err := w.d.Messages.Append(ctx, st.ProjectID, domain.RoleAssistant, st.Reply); err != nil {
			return fmt.Errorf("persist assistant message: %w", err)
		}
	}
	if st.Discovery != nil {
		out.discoveryDone(st.Discovery)
	}
	return nil
}

// resolve stores the intent spec and turns it into resolved components. A
// project that is already resolved keeps its plan; the new discovery output is
// dropped and the reply says so.
func (w *Workflow) resolve(ctx context.Context, st *State) error {
	name, description := projectLabels(st.Discovery)
	saved, err := w.d.Projects.SaveIntentSpec(ctx, st.ProjectID, st.Discovery, name, description)
	if err != nil {
		return fmt.Errorf("save intent spec: %w", err)
	}
	if !saved {
		w.log.Info("project already resolved, keeping its plan", zap.String("project_id", st.ProjectID))
		st.Discovery = nil
		st.Reply = alreadyPlannedReply
		return w.reloadStatus(ctx, st)
	}

	res, err := w.d.Resolver.CreateResolutionSpec(ctx, st.ProjectID, st.Discovery)
	if err != nil {
		return err
	}
	if !res.Success {
		w.log.Warn("resolution not created", zap.String("project_id", st.ProjectID), zap.String("reason", res.Message))
	}
	return w.reloadStatus(ctx, st)
}

func (w *Workflow) reloadStatus(ctx context.Context, st *State) error {
	p, err := w.d.Projects.Get(ctx, st.ProjectID)
	if err != nil {
		return fmt.Errorf("reload project: %w", err)
	}
	st.Project = p
	st.Status = p.Status
	return nil
}

func (w *Workflow) routeNode(ctx context.Context, st *State, _ *stream) error {
	st.SelectedSkill = w.d.Router.Route(ctx, st.Input, st.PriorSkill, st.Project.HasDiscovery())
	return nil
}

func (w *Workflow) chatNode(ctx context.Context, st *State, out *stream) error {
	reply, err := w.d.Chat.Reply(ctx, st.History, st.Input, out.token)
	if err != nil {
		return err
	}
	st.Reply = reply
	return nil
}

func (w *Workflow) discoveryNode(ctx context.Context, st *State, _ *stream) error {
	res, err := w.d.Discovery.Run(ctx, st.History, st.Input)
	if err != nil {
		return err
	}
	st.Discovery = res.Output
	st.Reply = discoverySummary(res.Output)
	return nil
}

func (w *Workflow) contentNode(ctx context.Context, st *State, out *stream) error {
	res, err := w.d.Content.Run(ctx, st.Project, nil)
	if err != nil {
		return err
	}
	if res == nil {
		st.Reply = "There are no components to write content for yet. Pick your component options first."
	} else {
		st.Reply = fmt.Sprintf("Content is ready for %d components.", len(res.Components))
		st.Status = domain.StatusContentGenerated
	}
	out.token(st.Reply)
	return nil
}

const alreadyPlannedReply = "This site already has a component plan. Pick your variations or ask me to write the content."

func discoverySummary(out *discovery.Output) string {
	names := make([]string, 0, len(out.Components))
	for _, c := range out.Components {
		names = append(names, c.Name)
	}
	return fmt.Sprintf("Here is a plan for your %s site aimed at %s. It has %s. Pick the variations you like to continue.",
		out.Intent, out.Audience, strings.Join(names, ", "))
}

func projectLabels(out *discovery.Output) (name, description string) {
	if out.Intent != "" {
		name = strings.ToUpper(out.Intent[:1]) + out.Intent[1:] + " site"
	}
	return name, out.Theme
}
