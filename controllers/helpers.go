package controllers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yashrajoria/lezzetli-admin/auth"
	apperrors "github.com/yashrajoria/lezzetli-admin/common/errors"
	"github.com/yashrajoria/lezzetli-admin/common/logger"
	"github.com/yashrajoria/lezzetli-admin/middleware"
	"github.com/yashrajoria/lezzetli-admin/services"
	"go.uber.org/zap"
)

// MaxUploadSize caps a single uploaded image or logo.
const MaxUploadSize = 5 << 20

// identity returns the caller. Routes are mounted behind AuthMiddleware, so
// a missing identity means the handler was wired without it.
func identity(c *gin.Context) (auth.Identity, bool) {
	id, ok := middleware.GetIdentity(c)
	if !ok {
		middleware.FlashError(c, apperrors.ErrMissingCredential.Message)
		c.Redirect(http.StatusFound, "/")
		c.Abort()
	}
	return id, ok
}

// respond writes body as JSON with the pending notices merged in.
func respond(c *gin.Context, status int, body gin.H) {
	for k, v := range middleware.Notices(c) {
		if _, taken := body[k]; !taken {
			body[k] = v
		}
	}
	c.JSON(status, body)
}

func redirectSuccess(c *gin.Context, location, msg string) {
	middleware.FlashSuccess(c, msg)
	c.Redirect(http.StatusFound, location)
}

// redirectError logs err and redirects with a notice. Validation failures
// show their own message, everything else shows msg.
func redirectError(c *gin.Context, location, msg string, err error) {
	if errors.Is(err, apperrors.ErrValidation) {
		msg = apperrors.Notice(err)
	}
	log := logger.For(c.Request.Context(), logger.Log)
	if apperrors.Status(err) >= http.StatusInternalServerError {
		log.Error(msg, zap.String("path", c.Request.URL.Path), zap.Error(err))
	} else {
		log.Warn(msg, zap.String("path", c.Request.URL.Path), zap.Error(err))
	}
	middleware.FlashError(c, msg)
	c.Redirect(http.StatusFound, location)
}

// formUpload reads an optional multipart image. A missing file is not an
// error.
func formUpload(c *gin.Context, field string) (*services.Upload, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, apperrors.Validation("Invalid file upload")
	}
	if fh.Size > MaxUploadSize {
		return nil, apperrors.Validation(fmt.Sprintf("File must be smaller than %d MB", MaxUploadSize>>20))
	}
	f, err := fh.Open()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrBadRequest, err)
	}
	defer f.Close()

	body, err := io.ReadAll(io.LimitReader(f, MaxUploadSize+1))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrBadRequest, err)
	}
	contentType := http.DetectContentType(body)
	if !allowedImageTypes[contentType] {
		return nil, apperrors.Validation("Only JPEG, PNG, WEBP or GIF images are allowed")
	}
	return &services.Upload{
		Filename:    fh.Filename,
		ContentType: contentType,
		Body:        body,
	}, nil
}
