package tutortime

import (
	"context"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

const textCodeInvalidTransition = "INVALID_SLOT_TRANSITION"

// ErrInvalidTransition is returned when a requested slot change is not allowed.
// It is categorized as not-found so a slot that is not in the required state
// surfaces to HTTP clients exactly like a slot that does not exist.
var ErrInvalidTransition = goerrors.New("invalid appointment state transition", goerrors.CategoryNotFound).
	WithTextCode(textCodeInvalidTransition).
	WithCode(goerrors.CodeNotFound)

// TransitionMetadata captures extra context for a transition.
type TransitionMetadata struct {
	Reason   string
	Metadata map[string]any
}

// TransitionContext is passed into hooks for additional processing.
type TransitionContext struct {
	Actor ActorRef
	Slot  *Appointment
	From  SlotStatus
	To    SlotStatus
	Meta  TransitionMetadata
}

// TransitionHook is executed before or after a transition.
type TransitionHook func(ctx context.Context, tc TransitionContext) error

// TransitionHookPhase identifies whether a hook ran before or after persistence.
type TransitionHookPhase string

const (
	HookPhaseBefore TransitionHookPhase = "before_transition"
	HookPhaseAfter  TransitionHookPhase = "after_transition"
)

// TransitionOption customizes a single transition call.
type TransitionOption func(*transitionOptions)

// SlotStateMachine defines the appointment lifecycle operations.
//
// Every mutation is pushed down to a conditional update in the Appointments
// repository, so two racing callers can never both win: the losing caller
// gets back the error that describes the slot's actual state.
type SlotStateMachine interface {
	Book(ctx context.Context, actor ActorRef, slotID, studentID uuid.UUID, opts ...TransitionOption) (*Appointment, error)
	Approve(ctx context.Context, actor ActorRef, slotID, teacherID, studentID uuid.UUID, opts ...TransitionOption) (*Appointment, error)
	Reject(ctx context.Context, actor ActorRef, slotID, teacherID, studentID uuid.UUID, opts ...TransitionOption) (*Appointment, error)
	DeleteOpen(ctx context.Context, actor ActorRef, slotID, teacherID uuid.UUID, opts ...TransitionOption) error
	CurrentStatus(slot *Appointment) SlotStatus
}

// HookErrorHandler handles errors surfaced by transition hooks.
type HookErrorHandler func(ctx context.Context, phase TransitionHookPhase, err error, tc TransitionContext) error

// StateMachineOption customizes state machine construction.
type StateMachineOption func(*slotStateMachine)

// WithStateMachineClock injects a custom clock (useful for tests).
func WithStateMachineClock(clock func() time.Time) StateMachineOption {
	return func(sm *slotStateMachine) {
		if clock != nil {
			sm.now = clock
		}
	}
}

// WithStateMachineActivitySink sets the ActivitySink used to publish lifecycle events.
func WithStateMachineActivitySink(sink ActivitySink) StateMachineOption {
	return func(sm *slotStateMachine) {
		sm.activitySink = normalizeActivitySink(sink)
	}
}

// WithStateMachineHookErrorHandler overrides how hook failures are propagated.
// Provide a handler to convert hook errors into domain-specific responses,
// otherwise the default handler panics with guidance for developers.
func WithStateMachineHookErrorHandler(handler HookErrorHandler) StateMachineOption {
	return func(sm *slotStateMachine) {
		if handler != nil {
			sm.hookErrorHandler = handler
		}
	}
}

// WithStateMachineLogger overrides the logger used for sink failures.
func WithStateMachineLogger(logger Logger) StateMachineOption {
	return func(sm *slotStateMachine) {
		if logger != nil {
			sm.logger = logger
		}
	}
}

// WithTransitionReason sets the human-readable reason for the transition.
func WithTransitionReason(reason string) TransitionOption {
	return func(opts *transitionOptions) {
		opts.metadata.Reason = reason
	}
}

// WithTransitionMetadata merges metadata into the transition context.
func WithTransitionMetadata(metadata map[string]any) TransitionOption {
	return func(opts *transitionOptions) {
		if len(metadata) == 0 {
			return
		}
		if opts.metadata.Metadata == nil {
			opts.metadata.Metadata = make(map[string]any, len(metadata))
		}
		for k, v := range metadata {
			opts.metadata.Metadata[k] = v
		}
	}
}

// WithBeforeTransitionHook adds a hook executed before the conditional update.
func WithBeforeTransitionHook(h TransitionHook) TransitionOption {
	return func(opts *transitionOptions) {
		if h != nil {
			opts.beforeHooks = append(opts.beforeHooks, h)
		}
	}
}

// WithAfterTransitionHook adds a hook executed after the conditional update succeeds.
func WithAfterTransitionHook(h TransitionHook) TransitionOption {
	return func(opts *transitionOptions) {
		if h != nil {
			opts.afterHooks = append(opts.afterHooks, h)
		}
	}
}

// NewSlotStateMachine returns the default implementation backed by the provided repository.
func NewSlotStateMachine(slots Appointments, opts ...StateMachineOption) SlotStateMachine {
	sm := &slotStateMachine{
		slots: slots,
		transitions: map[SlotStatus]map[SlotStatus]struct{}{
			SlotOpen: {
				SlotRequested: {},
			},
			SlotRequested: {
				SlotApproved: {},
				SlotOpen:     {},
			},
		},
		now:          time.Now,
		activitySink: noopActivitySink{},
		logger:       defLogger{},
		hookErrorHandler: func(ctx context.Context, phase TransitionHookPhase, err error, tc TransitionContext) error {
			return defaultHookErrorHandler(ctx, phase, err, tc)
		},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(sm)
		}
	}

	return sm
}

type slotStateMachine struct {
	slots            Appointments
	transitions      map[SlotStatus]map[SlotStatus]struct{}
	now              func() time.Time
	activitySink     ActivitySink
	logger           Logger
	hookErrorHandler HookErrorHandler
}

type transitionOptions struct {
	metadata    TransitionMetadata
	beforeHooks []TransitionHook
	afterHooks  []TransitionHook
}

func (o *transitionOptions) cloneMetadata() TransitionMetadata {
	var cloned map[string]any
	if len(o.metadata.Metadata) > 0 {
		cloned = make(map[string]any, len(o.metadata.Metadata))
		for k, v := range o.metadata.Metadata {
			cloned[k] = v
		}
	}

	return TransitionMetadata{
		Reason:   o.metadata.Reason,
		Metadata: cloned,
	}
}

// Book moves an open slot to requested on behalf of a student. Only one of
// any number of concurrent bookers wins; losers get ErrSlotTaken or
// ErrSlotNotFound depending on what the slot looks like after the race.
func (sm *slotStateMachine) Book(ctx context.Context, actor ActorRef, slotID, studentID uuid.UUID, opts ...TransitionOption) (*Appointment, error) {
	return sm.transition(ctx, actor, slotID, SlotOpen, SlotRequested, ActivityEventSlotBooked, opts, func(ctx context.Context) (*Appointment, error) {
		return sm.slots.Book(ctx, slotID, studentID)
	})
}

// Approve confirms a requested slot. The teacher must own the slot and the
// review must name the student currently bound to it.
func (sm *slotStateMachine) Approve(ctx context.Context, actor ActorRef, slotID, teacherID, studentID uuid.UUID, opts ...TransitionOption) (*Appointment, error) {
	return sm.transition(ctx, actor, slotID, SlotRequested, SlotApproved, ActivityEventSlotApproved, opts, func(ctx context.Context) (*Appointment, error) {
		return sm.slots.Approve(ctx, slotID, teacherID, studentID)
	})
}

// Reject releases a requested slot back to the open pool. Like Approve, the
// teacher must own the slot and the named student must still be bound to it;
// the student assignment and any approval flag are cleared.
func (sm *slotStateMachine) Reject(ctx context.Context, actor ActorRef, slotID, teacherID, studentID uuid.UUID, opts ...TransitionOption) (*Appointment, error) {
	return sm.transition(ctx, actor, slotID, SlotRequested, SlotOpen, ActivityEventSlotRejected, opts, func(ctx context.Context) (*Appointment, error) {
		return sm.slots.Reject(ctx, slotID, teacherID, studentID)
	})
}

// DeleteOpen removes a slot that is still open. A slot that does not exist
// and a slot that has already been requested report the same error; callers
// cannot tell the two apart.
func (sm *slotStateMachine) DeleteOpen(ctx context.Context, actor ActorRef, slotID, teacherID uuid.UUID, opts ...TransitionOption) error {
	options := sm.buildTransitionOptions(opts...)

	ctxData := TransitionContext{
		Actor: actor,
		From:  SlotOpen,
		Meta:  options.cloneMetadata(),
	}

	if err := sm.runHooks(ctx, options.beforeHooks, ctxData, HookPhaseBefore); err != nil {
		return err
	}

	if err := sm.slots.DeleteOpen(ctx, slotID, teacherID); err != nil {
		return err
	}

	if err := sm.runHooks(ctx, options.afterHooks, ctxData, HookPhaseAfter); err != nil {
		return err
	}

	sm.recordActivity(ctx, ActivityEvent{
		EventType:  ActivityEventSlotDeleted,
		Actor:      actor,
		SlotID:     slotID.String(),
		FromStatus: SlotOpen,
		Metadata:   sm.transitionMetadata(ctxData.Meta),
	})

	return nil
}

func (sm *slotStateMachine) CurrentStatus(slot *Appointment) SlotStatus {
	if slot == nil {
		return ""
	}
	return slot.Status()
}

func (sm *slotStateMachine) transition(
	ctx context.Context,
	actor ActorRef,
	slotID uuid.UUID,
	from, to SlotStatus,
	event ActivityEventType,
	opts []TransitionOption,
	apply func(ctx context.Context) (*Appointment, error),
) (*Appointment, error) {
	if !sm.canTransition(from, to) {
		return nil, ErrInvalidTransition.WithMetadata(map[string]any{
			"from": from,
			"to":   to,
		})
	}

	options := sm.buildTransitionOptions(opts...)

	ctxData := TransitionContext{
		Actor: actor,
		From:  from,
		To:    to,
		Meta:  options.cloneMetadata(),
	}

	if err := sm.runHooks(ctx, options.beforeHooks, ctxData, HookPhaseBefore); err != nil {
		return nil, err
	}

	updated, err := apply(ctx)
	if err != nil {
		return nil, err
	}

	ctxData.Slot = updated

	if err := sm.runHooks(ctx, options.afterHooks, ctxData, HookPhaseAfter); err != nil {
		return nil, err
	}

	sm.recordActivity(ctx, ActivityEvent{
		EventType:  event,
		Actor:      actor,
		SlotID:     slotID.String(),
		FromStatus: from,
		ToStatus:   to,
		Metadata:   sm.transitionMetadata(ctxData.Meta),
	})

	return updated, nil
}

func (sm *slotStateMachine) runHooks(ctx context.Context, hooks []TransitionHook, data TransitionContext, phase TransitionHookPhase) error {
	for _, hook := range hooks {
		if hook == nil {
			continue
		}
		if err := hook(ctx, data); err != nil {
			if sm.hookErrorHandler == nil {
				return err
			}
			return sm.hookErrorHandler(ctx, phase, err, data)
		}
	}
	return nil
}

func (sm *slotStateMachine) canTransition(from, to SlotStatus) bool {
	if allowed, ok := sm.transitions[from]; ok {
		_, exists := allowed[to]
		return exists
	}
	return false
}

func (sm *slotStateMachine) buildTransitionOptions(opts ...TransitionOption) *transitionOptions {
	options := &transitionOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(options)
		}
	}
	return options
}

func defaultHookErrorHandler(_ context.Context, phase TransitionHookPhase, err error, tc TransitionContext) error {
	panic(fmt.Sprintf(
		"tutortime: %s transition hook failed: %v\nfrom=%s to=%s reason=%s\nProvide tutortime.WithStateMachineHookErrorHandler to customize error handling in production.",
		phase,
		err,
		tc.From,
		tc.To,
		tc.Meta.Reason,
	))
}

func (sm *slotStateMachine) recordActivity(ctx context.Context, event ActivityEvent) {
	if event.Actor == (ActorRef{}) {
		event.Actor = ActorRef{Type: "system"}
	}

	if event.OccurredAt.IsZero() {
		event.OccurredAt = sm.now()
	}

	sink := normalizeActivitySink(sm.activitySink)
	if err := sink.Record(ctx, event); err != nil {
		sm.logger.Warn("state machine activity sink error: %v", err)
	}
}

func (sm *slotStateMachine) transitionMetadata(meta TransitionMetadata) map[string]any {
	if meta.Reason == "" && len(meta.Metadata) == 0 {
		return nil
	}

	result := map[string]any{}
	if meta.Reason != "" {
		result["reason"] = meta.Reason
	}
	for k, v := range meta.Metadata {
		result[k] = v
	}
	return result
}
