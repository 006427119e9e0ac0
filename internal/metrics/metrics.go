package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests counts served requests by route template, method and status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rollcall_http_requests_total",
		Help: "HTTP requests by route, method and status code.",
	}, []string{"route", "method", "status"})

	// HTTPDuration observes request latency by route template.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rollcall_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	// AttendanceRecorded counts attendance logs written, by method.
	AttendanceRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rollcall_attendance_recorded_total",
		Help: "Attendance logs recorded by check-in method.",
	}, []string{"method"})

	// RFIDScans counts RFID lookups by outcome (verified, unknown).
	RFIDScans = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rollcall_rfid_scans_total",
		Help: "RFID scans by outcome.",
	}, []string{"result"})

	// FaceVerifications counts face verification decisions (verified, rejected, error).
	FaceVerifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rollcall_face_verifications_total",
		Help: "Face verifications by outcome.",
	}, []string{"result"})

	// DuplicateAttendance counts check-ins seen more than once for the same
	// student, class and day.
	DuplicateAttendance = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rollcall_attendance_duplicates_total",
		Help: "Attendance events repeating a student/class/day already seen.",
	})
)
