// Package clientcache keeps a client-side view of the caller's enrollment
// state per course: an explicit store mutated only by a typed reducer, with
// synchronous subscriber notification and a debounced background reconcile
// against the server.
package clientcache

import (
  "context"
  "sync"
  "time"

  "github.com/google/uuid"

  "github.com/skillforge/skillforge-backend/internal/logger"
)

// CourseState is the visible per-course cache entry.
type CourseState struct {
  CourseID    uuid.UUID
  Enrolled    bool
  Progress    float64
  Title       string
  LastUpdated time.Time

  // missedFetches counts consecutive reconcile fetches that reported
  // not-enrolled while the visible state is enrolled. Two are required
  // before the visible state flips; a single transient miss is ignored.
  missedFetches int
}

type EventKind int

const (
  EventEnrolled EventKind = iota
  EventUnenrolled
  EventProgressChanged
  EventRefetched
)

type Event struct {
  Kind     EventKind
  CourseID uuid.UUID
  Enrolled bool
  Progress float64
  Title    string
}

// Fetch is the authoritative server answer for one course.
type Fetch struct {
  Enrolled bool
  Progress float64
  Title    string
}

// Fetcher resolves the server-side enrollment state for a course.
type Fetcher interface {
  FetchEnrollment(ctx context.Context, courseID uuid.UUID) (Fetch, error)
}

type Subscriber func(state CourseState)

const defaultReconcileDelay = time.Second

type Store struct {
  mu           sync.Mutex
  log          *logger.Logger
  fetcher      Fetcher
  states       map[uuid.UUID]*CourseState
  subscribers  map[int]Subscriber
  nextSubID    int
  delay        time.Duration
  pendingTimer map[uuid.UUID]*time.Timer
  closed       bool
}

func NewStore(log *logger.Logger, fetcher Fetcher) *Store {
  return &Store{
    log:          log.With("component", "ClientCache"),
    fetcher:      fetcher,
    states:       make(map[uuid.UUID]*CourseState),
    subscribers:  make(map[int]Subscriber),
    delay:        defaultReconcileDelay,
    pendingTimer: make(map[uuid.UUID]*time.Timer),
  }
}

// SetReconcileDelay overrides the debounce interval; tests shorten it.
func (s *Store) SetReconcileDelay(d time.Duration) {
  s.mu.Lock()
  defer s.mu.Unlock()
  s.delay = d
}

// Subscribe registers a callback and returns its id for Unsubscribe.
// Callbacks run synchronously on the dispatching goroutine with a
// snapshot taken under the lock: run-to-completion, never re-entered
// mid-reduction.
func (s *Store) Subscribe(fn Subscriber) int {
  s.mu.Lock()
  defer s.mu.Unlock()
  id := s.nextSubID
  s.nextSubID++
  s.subscribers[id] = fn
  return id
}

func (s *Store) Unsubscribe(id int) {
  s.mu.Lock()
  defer s.mu.Unlock()
  delete(s.subscribers, id)
}

// Get returns a snapshot of the course state and whether it exists.
func (s *Store) Get(courseID uuid.UUID) (CourseState, bool) {
  s.mu.Lock()
  defer s.mu.Unlock()
  st, ok := s.states[courseID]
  if !ok {
    return CourseState{}, false
  }
  return *st, true
}

// Dispatch runs the reducer for one event, notifies subscribers, and for
// local action events schedules a debounced reconcile fetch.
func (s *Store) Dispatch(ctx context.Context, ev Event) {
  s.mu.Lock()
  st := s.stateFor(ev.CourseID)
  s.reduce(st, ev)
  snapshot := *st
  subs := make([]Subscriber, 0, len(s.subscribers))
  for _, fn := range s.subscribers {
    subs = append(subs, fn)
  }
  s.mu.Unlock()

  for _, fn := range subs {
    fn(snapshot)
  }

  switch ev.Kind {
  case EventEnrolled, EventUnenrolled, EventProgressChanged:
    s.scheduleReconcile(ctx, ev.CourseID)
  }
}

func (s *Store) stateFor(courseID uuid.UUID) *CourseState {
  st, ok := s.states[courseID]
  if !ok {
    st = &CourseState{CourseID: courseID}
    s.states[courseID] = st
  }
  return st
}

// reduce is the single place visible state changes. The non-reversion rule
// lives here: an enrolled=true state only flips to false on an explicit
// Unenrolled event or on the second consecutive not-enrolled fetch.
func (s *Store) reduce(st *CourseState, ev Event) {
  now := time.Now()
  switch ev.Kind {
  case EventEnrolled:
    st.Enrolled = true
    st.Progress = ev.Progress
    if ev.Title != "" {
      st.Title = ev.Title
    }
    st.missedFetches = 0
    st.LastUpdated = now
  case EventUnenrolled:
    st.Enrolled = false
    st.Progress = 0
    st.missedFetches = 0
    st.LastUpdated = now
  case EventProgressChanged:
    st.Progress = ev.Progress
    st.LastUpdated = now
  case EventRefetched:
    if ev.Enrolled {
      st.Enrolled = true
      st.Progress = ev.Progress
      if ev.Title != "" {
        st.Title = ev.Title
      }
      st.missedFetches = 0
    } else if st.Enrolled {
      st.missedFetches++
      if st.missedFetches >= 2 {
        st.Enrolled = false
        st.Progress = 0
        st.missedFetches = 0
      }
    } else {
      st.Progress = 0
      st.missedFetches = 0
    }
    st.LastUpdated = now
  }
}

// scheduleReconcile debounces: a new local action for the same course
// resets the pending timer. Overlapping in-flight fetches are harmless;
// the reducer is idempotent and last-write-wins.
func (s *Store) scheduleReconcile(ctx context.Context, courseID uuid.UUID) {
  if s.fetcher == nil {
    return
  }
  s.mu.Lock()
  if s.closed {
    s.mu.Unlock()
    return
  }
  if t, ok := s.pendingTimer[courseID]; ok {
    t.Stop()
  }
  s.pendingTimer[courseID] = time.AfterFunc(s.delay, func() {
    s.mu.Lock()
    delete(s.pendingTimer, courseID)
    s.mu.Unlock()
    s.Reconcile(ctx, courseID)
  })
  s.mu.Unlock()
}

// Reconcile fetches the authoritative state and dispatches a Refetched
// event. Fetch failures are swallowed; the cache stays stale rather than
// guessing.
func (s *Store) Reconcile(ctx context.Context, courseID uuid.UUID) {
  if s.fetcher == nil {
    return
  }
  fetched, err := s.fetcher.FetchEnrollment(ctx, courseID)
  if err != nil {
    s.log.Debug("reconcile fetch failed; keeping cached state", "courseID", courseID, "error", err)
    return
  }
  s.Dispatch(ctx, Event{
    Kind:     EventRefetched,
    CourseID: courseID,
    Enrolled: fetched.Enrolled,
    Progress: fetched.Progress,
    Title:    fetched.Title,
  })
}

// Close stops pending reconcile timers.
func (s *Store) Close() {
  s.mu.Lock()
  defer s.mu.Unlock()
  s.closed = true
  for id, t := range s.pendingTimer {
    t.Stop()
    delete(s.pendingTimer, id)
  }
}
