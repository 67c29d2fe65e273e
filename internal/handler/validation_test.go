package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Payload struct {
	Field string `binding:"required,phone"`
}

func TestRegisterValidation(t *testing.T) {
	err := RegisterValidation()
	require.NoError(t, err)

	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)

	request, err := http.NewRequest("GET", "/", nil)
	assert.NoError(t, err)
	ctx.Request = request

	err = ctx.ShouldBind(&Payload{Field: "+45 31 41 59 26"})
	assert.NoError(t, err)

	err = ctx.ShouldBind(&Payload{Field: "(555) 867-5309"})
	assert.NoError(t, err)

	err = ctx.ShouldBind(&Payload{Field: "not a number"})
	assert.Error(t, err)
	assert.Equal(t, "Key: 'Payload.Field' Error:Field validation for 'Field' failed on the 'phone' tag", err.Error())

	err = ctx.ShouldBind(&Payload{Field: "123"})
	assert.Error(t, err)
}
