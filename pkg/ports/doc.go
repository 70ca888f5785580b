/*
Package ports defines the driven ports (interfaces) for the nbstage client.

These interfaces decouple the run-session controller from external
implementations, allowing it to work with different backends, kernel
transports, and host frontends.

# Key Interfaces

  - PipelineStore: The backend pipeline store's run-session and detection
    endpoints.
  - Notebook: The host frontend's notebook document (save, run cells,
    evaluate code on its kernel).
  - Kernel: An observed interpreter process (status, restart, status-change
    notifications).
  - RunLocker: Per-notebook mutual exclusion across concurrent run attempts.
*/
package ports
