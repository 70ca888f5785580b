package ports

// ErrorPresenter shows a user-visible error message. Implemented by the host
// frontend (dialog, toast, log pane); the controller only decides what is
// user-visible per the error taxonomy.
type ErrorPresenter interface {
	ShowError(title, message string)
}

// Refresher invalidates host-side caches after a run finalizes, so
// pipeline-status and notebook-list views re-fetch. Optional; a nil
// Refresher means no views to refresh.
type Refresher interface {
	RefreshPipelineStatus()
	RefreshNotebooks()
}
