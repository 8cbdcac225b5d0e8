package command

import (
	"sort"
	"strconv"
)

// Entry records where a command was introduced and everything seen since.
// FirstChapter and FirstChapterTitle are immutable once set; chapter
// membership and per-chapter flags only grow.
type Entry struct {
	Command           string
	FirstChapter      int
	FirstChapterTitle string
	Chapters          map[int]bool
	FlagsByChapter    map[int]map[string]bool
}

// Registry is the per-document command index. It provides no internal
// locking: callers that extract concurrently must serialize Register
// (one owner goroutine, as the pipeline worker does).
type Registry struct {
	entries map[string]*Entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*Entry)}
}

// Register folds one extraction batch into the registry. First sighting of
// a command pins its introduction chapter; repeated sightings only union
// chapter membership and flags, so re-running extraction is idempotent.
func (r *Registry) Register(cmds []Extracted, chapterIndex int, chapterTitle string) {
	for _, c := range cmds {
		e, ok := r.entries[c.Command]
		if !ok {
			e = &Entry{
				Command:           c.Command,
				FirstChapter:      chapterIndex,
				FirstChapterTitle: chapterTitle,
				Chapters:          make(map[int]bool),
				FlagsByChapter:    make(map[int]map[string]bool),
			}
			r.entries[c.Command] = e
		}
		e.Chapters[chapterIndex] = true
		if len(c.Flags) > 0 {
			set := e.FlagsByChapter[chapterIndex]
			if set == nil {
				set = make(map[string]bool)
				e.FlagsByChapter[chapterIndex] = set
			}
			for _, f := range c.Flags {
				set[f] = true
			}
		}
	}
}

// NewInChapter lists commands first introduced in the given chapter,
// sorted by name.
func (r *Registry) NewInChapter(chapterIndex int) []string {
	var out []string
	for name, e := range r.entries {
		if e.FirstChapter == chapterIndex {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// AllByChapter maps each chapter index to the commands it introduced.
func (r *Registry) AllByChapter() map[int][]string {
	out := make(map[int][]string)
	for name, e := range r.entries {
		out[e.FirstChapter] = append(out[e.FirstChapter], name)
	}
	for _, names := range out {
		sort.Strings(names)
	}
	return out
}

// Info returns the entry for a command, or false when never seen.
func (r *Registry) Info(name string) (Entry, bool) {
	e, ok := r.entries[name]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Commands returns every tracked command name, sorted.
func (r *Registry) Commands() []string {
	out := make([]string, 0, len(r.entries))
	for name := range r.entries {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Len reports the number of tracked commands.
func (r *Registry) Len() int {
	return len(r.entries)
}

// EntrySnapshot is the wire form of an Entry. Chapter-indexed maps use
// decimal-string keys so the structure survives JSON object encoding.
type EntrySnapshot struct {
	FirstChapter      int                 `json:"first_chapter"`
	FirstChapterTitle string              `json:"first_chapter_title"`
	Chapters          []int               `json:"chapters"`
	FlagsByChapter    map[string][]string `json:"flags_by_chapter,omitempty"`
}

// Snapshot is the registry's serializable form: the entry map plus the
// chapter→introduced-commands map, enough to fully reconstruct state.
type Snapshot struct {
	Commands  map[string]EntrySnapshot `json:"commands"`
	ByChapter map[string][]string      `json:"by_chapter"`
}

// Snapshot renders the registry as plain data.
func (r *Registry) Snapshot() Snapshot {
	snap := Snapshot{
		Commands:  make(map[string]EntrySnapshot, len(r.entries)),
		ByChapter: make(map[string][]string),
	}
	for name, e := range r.entries {
		es := EntrySnapshot{
			FirstChapter:      e.FirstChapter,
			FirstChapterTitle: e.FirstChapterTitle,
			Chapters:          sortedKeys(e.Chapters),
		}
		if len(e.FlagsByChapter) > 0 {
			es.FlagsByChapter = make(map[string][]string, len(e.FlagsByChapter))
			for ch, flags := range e.FlagsByChapter {
				es.FlagsByChapter[strconv.Itoa(ch)] = sortedKeys2(flags)
			}
		}
		snap.Commands[name] = es
	}
	for ch, names := range r.AllByChapter() {
		snap.ByChapter[strconv.Itoa(ch)] = names
	}
	return snap
}

// FromSnapshot rebuilds a registry from plain data. Missing keys are
// treated as empty collections and unparseable chapter keys are skipped,
// so partial or empty input never fails.
func FromSnapshot(snap Snapshot) *Registry {
	r := NewRegistry()
	for name, es := range snap.Commands {
		e := &Entry{
			Command:           name,
			FirstChapter:      es.FirstChapter,
			FirstChapterTitle: es.FirstChapterTitle,
			Chapters:          make(map[int]bool),
			FlagsByChapter:    make(map[int]map[string]bool),
		}
		for _, ch := range es.Chapters {
			e.Chapters[ch] = true
		}
		for key, flags := range es.FlagsByChapter {
			ch, err := strconv.Atoi(key)
			if err != nil {
				continue
			}
			set := make(map[string]bool, len(flags))
			for _, f := range flags {
				set[f] = true
			}
			e.FlagsByChapter[ch] = set
		}
		r.entries[name] = e
	}
	return r
}

func sortedKeys(m map[int]bool) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}

func sortedKeys2(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
