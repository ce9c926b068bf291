package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "pdfvault"

// Consistency fault kinds recorded by the document service.
const (
	FaultOrphanedBlob        = "orphaned_blob"
	FaultDanglingRecord      = "dangling_record"
	FaultDanglingDeletedBlob = "dangling_deleted_blob"
)

var (
	DocumentsUploaded = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: namespace, Name: "documents_uploaded_total", Help: "Number of documents stored successfully."},
	)
	UploadBytes = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: namespace, Name: "upload_bytes_total", Help: "Bytes written to the blob store by successful uploads."},
	)
	DocumentsDeleted = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: namespace, Name: "documents_deleted_total", Help: "Number of documents deleted."},
	)
	UploadsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "uploads_rejected_total", Help: "Uploads rejected by validation, by reason."},
		[]string{"reason"},
	)
	ConsistencyFaults = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "consistency_faults_total", Help: "Blob/metadata divergences detected, by kind."},
		[]string{"kind"},
	)
	UploadRateLimited = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: namespace, Name: "upload_rate_limited_total", Help: "Upload requests rejected by the rate limiter."},
	)
)

// RegisterCollectors registers every domain collector with reg.
// Collectors already present in reg are tolerated so tests and restarts can share a registry.
func RegisterCollectors(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		DocumentsUploaded,
		UploadBytes,
		DocumentsDeleted,
		UploadsRejected,
		ConsistencyFaults,
		UploadRateLimited,
	} {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	return nil
}
