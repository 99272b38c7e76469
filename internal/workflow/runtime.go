package workflow

import (
	"log/slog"

	"github.com/JaimeStill/docket/internal/records"
	"github.com/JaimeStill/docket/pkg/queue"
	"github.com/JaimeStill/docket/pkg/storage"
)

// Runtime bundles the dependencies that pipeline stages require.
// It is constructed by higher-level composition code from Infrastructure and Domain systems.
type Runtime struct {
	Oracle      Oracle
	Geocoder    Geocoder
	Records     records.System
	Storage     storage.System
	Queue       queue.System
	Containers  storage.Containers
	QueuePrefix string
	Logger      *slog.Logger
}

// QueueName returns the queue that triggers stage.
func (rt *Runtime) QueueName(stage StageName) string {
	return rt.QueuePrefix + string(stage)
}

// DocumentKey returns the blob key of a document's PDF.
func DocumentKey(documentID string) string {
	return documentID + ".pdf"
}

// ExportKey returns the blob key of a document's exported record.
func ExportKey(documentID string) string {
	return documentID + ".json"
}
