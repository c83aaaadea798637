package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"

  "github.com/skillforge/skillforge-backend/internal/apperr"
)

type APIError struct {
  Message string            `json:"message"`
  Code    string            `json:"code,omitempty"`
  Fields  map[string]string `json:"fields,omitempty"`
}

type ErrorEnvelope struct {
  Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
  msg := "unknown error"
  if err != nil {
    msg = err.Error()
  }
  c.JSON(status, ErrorEnvelope{
    Error: APIError{
      Message: msg,
      Code:    code,
    },
  })
}

// RespondAppError maps a service error to its HTTP status. Unrecognized
// errors become an opaque 500; the caller logs the detail.
func RespondAppError(c *gin.Context, err error) {
  if ae := apperr.As(err); ae != nil {
    c.JSON(ae.Status(), ErrorEnvelope{
      Error: APIError{
        Message: ae.Msg,
        Code:    ae.Code,
        Fields:  ae.Fields,
      },
    })
    return
  }
  c.JSON(http.StatusInternalServerError, ErrorEnvelope{
    Error: APIError{
      Message: "internal server error",
      Code:    "internal",
    },
  })
}

func RespondOK(c *gin.Context, payload any) {
  c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
  c.JSON(http.StatusCreated, payload)
}
