package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rollcall/internal/attendance"
)

type createClassRequest struct {
	Name      string  `json:"class_name" binding:"required"`
	TeacherID int64   `json:"teacher_id" binding:"required"`
	Schedule  *string `json:"schedule"`
}

type updateClassRequest struct {
	Name      *string `json:"class_name"`
	TeacherID *int64  `json:"teacher_id"`
	Schedule  *string `json:"schedule"`
}

func (h *Handler) createClass(c *gin.Context) {
	var req createClassRequest
	if err := bindJSON(c, &req, "Missing required fields"); err != nil {
		h.fail(c, err)
		return
	}
	id, err := h.svc.CreateClass(c.Request.Context(), attendance.NewClass{
		Name:      req.Name,
		TeacherID: req.TeacherID,
		Schedule:  req.Schedule,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Class created successfully", "class_id": id})
}

func (h *Handler) getClass(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	cl, err := h.svc.GetClass(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cl)
}

func (h *Handler) updateClass(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	var req updateClassRequest
	if err := bindPatch(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	err = h.svc.UpdateClass(c.Request.Context(), id, attendance.ClassPatch{
		Name:      req.Name,
		TeacherID: req.TeacherID,
		Schedule:  req.Schedule,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Class updated successfully"})
}

func (h *Handler) roster(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	students, err := h.svc.Roster(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, students)
}
