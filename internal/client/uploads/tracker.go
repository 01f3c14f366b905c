package uploads

import "sync"

// Item is one tracked file.
type Item struct {
	ID        int
	Name      string
	Uploading bool
	URL       string
	Err       error
}

// Tracker follows the upload state of the files attached to a form.
// Submission is allowed only while no file is mid-upload.
type Tracker struct {
	mu     sync.Mutex
	items  []Item
	nextID int
}

func NewTracker() *Tracker {
	return &Tracker{}
}

// Begin registers name as uploading and returns its id. A settled earlier
// attempt for the same name is replaced.
func (t *Tracker) Begin(name string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	kept := t.items[:0]
	for _, it := range t.items {
		if it.Name != name || it.Uploading {
			kept = append(kept, it)
		}
	}
	t.items = kept

	id := t.nextID
	t.nextID++
	t.items = append(t.items, Item{ID: id, Name: name, Uploading: true})
	return id
}

// Finish records the outcome for id and clears its uploading flag.
func (t *Tracker) Finish(id int, url string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.items {
		if t.items[i].ID == id {
			t.items[i].Uploading = false
			t.items[i].URL = url
			t.items[i].Err = err
			return
		}
	}
}

// Remove drops id from the tracker.
func (t *Tracker) Remove(id int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.items {
		if t.items[i].ID == id {
			t.items = append(t.items[:i], t.items[i+1:]...)
			return
		}
	}
}

// Uploaded returns the URL of a finished, successful upload of name.
func (t *Tracker) Uploaded(name string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, it := range t.items {
		if it.Name == name && !it.Uploading && it.Err == nil && it.URL != "" {
			return it.URL, true
		}
	}
	return "", false
}

// CanSubmit is false iff at least one file is uploading.
func (t *Tracker) CanSubmit() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, it := range t.items {
		if it.Uploading {
			return false
		}
	}
	return true
}

// URLs returns the public URLs of successfully uploaded files in the
// order they were added.
func (t *Tracker) URLs() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []string
	for _, it := range t.items {
		if !it.Uploading && it.Err == nil && it.URL != "" {
			out = append(out, it.URL)
		}
	}
	return out
}

func (t *Tracker) Items() []Item {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Item, len(t.items))
	copy(out, t.items)
	return out
}
