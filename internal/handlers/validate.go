package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"
  "github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// BindAndValidate decodes the JSON body and runs validator tags. On failure
// it writes the error response and returns false.
func BindAndValidate(c *gin.Context, req any) bool {
  if err := c.ShouldBindJSON(req); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_body", err)
    return false
  }
  if err := validate.Struct(req); err != nil {
    fields := make(map[string]string)
    var vErrs validator.ValidationErrors
    if ok := isValidationErrors(err, &vErrs); ok {
      for _, fe := range vErrs {
        fields[fe.Field()] = fe.Tag()
      }
    }
    c.JSON(http.StatusBadRequest, ErrorEnvelope{
      Error: APIError{
        Message: "validation failed",
        Code:    "validation",
        Fields:  fields,
      },
    })
    return false
  }
  return true
}

func isValidationErrors(err error, target *validator.ValidationErrors) bool {
  if vErrs, ok := err.(validator.ValidationErrors); ok {
    *target = vErrs
    return true
  }
  return false
}
