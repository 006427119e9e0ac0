package handler

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"rollcall/internal/attendance"
)

type createStudentRequest struct {
	Name      string  `json:"name" binding:"required"`
	RFIDTag   string  `json:"rfid_tag"`
	PhotoPath *string `json:"photo_path"`
}

type updateStudentRequest struct {
	Name      *string `json:"name"`
	RFIDTag   *string `json:"rfid_tag"`
	PhotoPath *string `json:"photo_path"`
}

type photoRequest struct {
	Data string `json:"data" binding:"required"`
}

func (h *Handler) createStudent(c *gin.Context) {
	var req createStudentRequest
	if err := bindJSON(c, &req, "Missing required fields"); err != nil {
		h.fail(c, err)
		return
	}
	if req.PhotoPath != nil && *req.PhotoPath == "" {
		req.PhotoPath = nil
	}
	st, err := h.svc.CreateStudent(c.Request.Context(), attendance.NewStudent{
		Name:      req.Name,
		RFIDTag:   req.RFIDTag,
		PhotoPath: req.PhotoPath,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":    "Student created successfully",
		"student_id": st.ID,
		"rfid_tag":   st.RFIDTag,
	})
}

func (h *Handler) getStudent(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	st, err := h.svc.GetStudent(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *Handler) updateStudent(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	var req updateStudentRequest
	if err := bindPatch(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	err = h.svc.UpdateStudent(c.Request.Context(), id, attendance.StudentPatch{
		Name:      req.Name,
		RFIDTag:   req.RFIDTag,
		PhotoPath: req.PhotoPath,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Student updated successfully"})
}

// uploadStudentPhoto accepts {"data": "<base64 data URL>"} or a multipart
// "file" field and stores the uploaded URL as the student's photo_path.
func (h *Handler) uploadStudentPhoto(c *gin.Context) {
	if h.opts.Photos == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Image storage not configured"})
		return
	}
	id, err := parseID(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	ctx := c.Request.Context()
	if _, err := h.svc.GetStudent(ctx, id); err != nil {
		h.fail(c, err)
		return
	}

	var url string
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		file, header, ferr := c.Request.FormFile("file")
		if ferr != nil {
			h.fail(c, attendance.Validation("Missing file"))
			return
		}
		defer file.Close()
		data, ferr := io.ReadAll(file)
		if ferr != nil {
			h.fail(c, attendance.Validation("Unreadable file"))
			return
		}
		url, err = h.opts.Photos.UploadStudentFile(ctx, id, data, header.Filename)
	} else {
		var req photoRequest
		if berr := bindJSON(c, &req, "Missing photo data"); berr != nil {
			h.fail(c, berr)
			return
		}
		url, err = h.opts.Photos.UploadStudentPhoto(ctx, id, req.Data)
	}
	if err != nil {
		h.fail(c, attendance.Unavailable("Image upload failed", err))
		return
	}

	if err := h.svc.UpdateStudent(ctx, id, attendance.StudentPatch{PhotoPath: &url}); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Photo uploaded successfully", "photo_path": url})
}
