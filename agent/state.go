package agent

import "context"

// StateStore persists one State per session key.
type StateStore struct {
	store Store[*State]
}

func NewStateStore(core Cache[*State]) *StateStore {
	return &StateStore{store: NewStore(core, "agent:intake_state")}
}

func NewMemoryStateStore() *StateStore {
	return NewStateStore(NewMemoryCache[*State]())
}

func (s *StateStore) Load(ctx context.Context) (*State, error) {
	state, ok, err := s.store.Get(ctx)
	if err != nil {
		return nil, err
	}
	if !ok || state == nil {
		return NewState(), nil
	}
	return state, nil
}

func (s *StateStore) Save(ctx context.Context, state *State) error {
	if state == nil {
		state = NewState()
	}
	if state.Stage == "" {
		state.Stage = NewState().Stage
	}
	return s.store.Set(ctx, state)
}

func (s *StateStore) Clear(ctx context.Context) error {
	return s.store.Del(ctx)
}
