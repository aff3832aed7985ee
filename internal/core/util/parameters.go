package util

import "github.com/gin-gonic/gin"

// BindJSON decodes the request body into T without running gin's binding
// validation; callers validate with the shared validator.
func BindJSON[T any](c *gin.Context) (T, error) {
	var params T

	if err := c.ShouldBindJSON(&params); err != nil {
		return params, err
	}

	return params, nil
}

func BindQuery[T any](c *gin.Context) (T, error) {
	var params T

	if err := c.ShouldBindQuery(&params); err != nil {
		return params, err
	}

	return params, nil
}
