package tracker

import "time"

// Composer is the in-progress creation form. It is transient and never sent
// to the API.
type Composer struct {
	Open            bool
	Title           string
	Description     string
	ValidationError bool
}

// Composer returns a snapshot of the composer state.
func (t *Tracker) Composer() Composer {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.composer
}

// OpenComposer shows the creation form.
func (t *Tracker) OpenComposer() {
	t.mu.Lock()
	t.composer.Open = true
	t.mu.Unlock()
}

// CloseComposer hides the form. Draft text is kept for the next open.
func (t *Tracker) CloseComposer() {
	t.mu.Lock()
	t.composer.Open = false
	t.mu.Unlock()
}

// SetDraftTitle replaces the draft title as typed.
func (t *Tracker) SetDraftTitle(title string) {
	t.mu.Lock()
	t.composer.Title = title
	t.mu.Unlock()
}

// SetDraftDescription replaces the draft description as typed.
func (t *Tracker) SetDraftDescription(description string) {
	t.mu.Lock()
	t.composer.Description = description
	t.mu.Unlock()
}

// Close stops a pending validation-flag timer.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.flashTimer != nil {
		t.flashTimer.Stop()
		t.flashTimer = nil
	}
}

// clearValidationLocked drops the flag and cancels its timer.
func (t *Tracker) clearValidationLocked() {
	t.composer.ValidationError = false
	t.flashGen++
	if t.flashTimer != nil {
		t.flashTimer.Stop()
		t.flashTimer = nil
	}
}

// raiseValidationLocked sets the flag and (re)starts its clear timer.
// Only the newest timer may clear the flag.
func (t *Tracker) raiseValidationLocked() {
	t.composer.ValidationError = true
	if t.flashTimer != nil {
		t.flashTimer.Stop()
	}
	t.flashGen++
	gen := t.flashGen
	t.flashTimer = time.AfterFunc(t.opts.ValidationFlash, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if t.flashGen != gen {
			return
		}
		t.composer.ValidationError = false
		t.flashTimer = nil
	})
}
