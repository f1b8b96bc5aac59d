// Package httpapi is the JSON surface of the contact form: submit, blur
// validation, keystroke phone formatting and the message counter.
package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vortex-fintech/contactform/contact"
	"github.com/vortex-fintech/contactform/errors"
	"github.com/vortex-fintech/contactform/logger"
	"github.com/vortex-fintech/contactform/phone"
	"github.com/vortex-fintech/contactform/submit"
)

type Deps struct {
	Controller *submit.Controller
	// Limiter guards POST /v1/contact; nil disables rate limiting.
	Limiter       *VisitorLimiter
	OnRateLimited func()
	Log           logger.LoggerInterface
	// SubmitTimeout bounds one submission; 0 leaves only the request context.
	SubmitTimeout time.Duration
	// TrustedProxies are allowed to name the client in X-Forwarded-For.
	// With none, the client IP is the peer address, which keys both the
	// rate limiter and the in-flight guard.
	TrustedProxies []string
}

type handlers struct {
	ctrl    *submit.Controller
	timeout time.Duration
}

// valueRequest is the body of the per-field endpoints.
type valueRequest struct {
	Value string `json:"value"`
}

func New(d Deps) (*gin.Engine, error) {
	log := d.Log
	if log == nil {
		log = logger.NewNop()
	}
	h := &handlers{ctrl: d.Controller, timeout: d.SubmitTimeout}

	r := gin.New()
	if err := r.SetTrustedProxies(d.TrustedProxies); err != nil {
		return nil, fmt.Errorf("httpapi: trusted proxies: %w", err)
	}
	r.Use(gin.Recovery(), requestLog(log))

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	v1 := r.Group("/v1")
	if d.Limiter != nil {
		v1.POST("/contact", RateLimit(d.Limiter, d.OnRateLimited), h.submitContact)
	} else {
		v1.POST("/contact", h.submitContact)
	}
	v1.POST("/validate/:field", h.validateField)
	v1.POST("/phone/format", h.formatPhone)
	v1.POST("/message/count", h.countMessage)
	v1.GET("/limits", h.limits)
	return r, nil
}

func writeError(c *gin.Context, e errors.ErrorResponse) {
	c.Abort()
	e.ToHTTP(c.Writer)
}

func malformed(err error) errors.ErrorResponse {
	return errors.InvalidArgument().
		WithReason("malformed_body").
		WithMessage("Request body must be a JSON object").
		WithDetail("error", err.Error())
}

func (h *handlers) submitContact(c *gin.Context) {
	var form contact.Form
	if err := c.ShouldBindJSON(&form); err != nil {
		writeError(c, malformed(err))
		return
	}

	ctx := c.Request.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	rcpt, err := h.ctrl.Submit(ctx, c.ClientIP(), form)
	if err != nil {
		writeError(c, errors.ToErrorResponse(err))
		return
	}
	c.JSON(http.StatusOK, rcpt)
}

func (h *handlers) validateField(c *gin.Context) {
	name := c.Param("field")
	field, ok := contact.ParseField(name)
	if !ok {
		writeError(c, errors.UnknownField(name))
		return
	}

	var req valueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, malformed(err))
		return
	}

	res, err := h.ctrl.ValidateField(field, req.Value)
	if err != nil {
		writeError(c, errors.ToErrorResponse(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handlers) formatPhone(c *gin.Context) {
	var req valueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, malformed(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"formatted": phone.Format(req.Value),
		"digits":    phone.Digits(req.Value),
	})
}

func (h *handlers) countMessage(c *gin.Context) {
	var req valueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, malformed(err))
		return
	}
	cnt := contact.CharCount(req.Value, h.ctrl.Limits())
	c.JSON(http.StatusOK, gin.H{
		"length": cnt.Length,
		"max":    cnt.Max,
		"state":  cnt.State,
		"text":   cnt.String(),
	})
}

func (h *handlers) limits(c *gin.Context) {
	c.JSON(http.StatusOK, h.ctrl.Limits())
}

func requestLog(log logger.LoggerInterface) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debugw("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"client_ip", c.ClientIP(),
			"latency", time.Since(start),
		)
	}
}
