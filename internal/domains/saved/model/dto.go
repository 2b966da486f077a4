package model

// SaveRequest is the payload for saving a book. Status defaults to
// want_to_read when omitted.
type SaveRequest struct {
	Status SaveStatus `json:"status"`
}

func (r *SaveRequest) Validate() error {
	if r.Status == "" {
		r.Status = StatusWantToRead
	}
	if !r.Status.IsValid() {
		return NewInvalidStatusError(string(r.Status))
	}
	return nil
}

// UpdateSaveStatusRequest moves a saved book to another shelf.
type UpdateSaveStatusRequest struct {
	Status SaveStatus `json:"status"`
}

func (r *UpdateSaveStatusRequest) Validate() error {
	if !r.Status.IsValid() {
		return NewInvalidStatusError(string(r.Status))
	}
	return nil
}
