package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"rollcall/internal/attendance"
)

type recordAttendanceRequest struct {
	StudentID int64  `json:"student_id" binding:"required"`
	ClassID   int64  `json:"class_id" binding:"required"`
	Method    string `json:"method" binding:"required"`
}

type attendanceQuery struct {
	ClassID string `form:"class_id" binding:"required"`
	Date    string `form:"date" binding:"required,datetime=2006-01-02"`
}

type rfidScanRequest struct {
	RFIDTag string `json:"rfid_tag" binding:"required"`
}

type faceVerifyRequest struct {
	StudentID int64  `json:"student_id" binding:"required"`
	PhotoData string `json:"photo_data" binding:"required"`
}

func (h *Handler) recordAttendance(c *gin.Context) {
	var req recordAttendanceRequest
	if err := bindJSON(c, &req, "Missing required fields"); err != nil {
		h.fail(c, err)
		return
	}
	id, err := h.svc.RecordAttendance(c.Request.Context(), attendance.CheckIn{
		StudentID: req.StudentID,
		ClassID:   req.ClassID,
		Method:    req.Method,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Attendance recorded", "log_id": id})
}

func (h *Handler) listAttendance(c *gin.Context) {
	var q attendanceQuery
	if err := bindQuery(c, &q, "Missing class_id or date parameter"); err != nil {
		h.fail(c, err)
		return
	}
	classID, err := strconv.ParseInt(q.ClassID, 10, 64)
	if err != nil {
		h.fail(c, attendance.Validation("Invalid class_id"))
		return
	}
	day, err := time.Parse(time.DateOnly, q.Date)
	if err != nil {
		h.fail(c, attendance.Validation("Invalid date"))
		return
	}
	logs, err := h.svc.AttendanceOn(c.Request.Context(), classID, day)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

func (h *Handler) scanRFID(c *gin.Context) {
	var req rfidScanRequest
	if err := bindJSON(c, &req, "Missing RFID tag"); err != nil {
		h.fail(c, err)
		return
	}
	st, err := h.svc.ScanRFID(c.Request.Context(), req.RFIDTag)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"student_id": st.ID, "status": "Verified"})
}

func (h *Handler) verifyFace(c *gin.Context) {
	var req faceVerifyRequest
	if err := bindJSON(c, &req, "Missing fields"); err != nil {
		h.fail(c, err)
		return
	}
	ok, err := h.svc.VerifyFace(c.Request.Context(), req.StudentID, req.PhotoData)
	if err != nil {
		h.fail(c, err)
		return
	}
	status := "Rejected"
	if ok {
		status = "Verified"
	}
	c.JSON(http.StatusOK, gin.H{"student_id": req.StudentID, "status": status})
}
