package handlers

import (
	"context"
	"net/http"

	"github.com/concave-dev/dhcpool/internal/dhcp"
	"github.com/concave-dev/dhcpool/internal/validate"
	"github.com/gin-gonic/gin"
)

// RangeChecker answers pool range checks.
type RangeChecker interface {
	IsValid(ctx context.Context, subnetCN, rangeText string) (dhcp.CheckResult, error)
}

// RangeCheckQuery is the query of GET /subnets/:subnet/range-check.
type RangeCheckQuery struct {
	Range string `form:"range" binding:"required,dhcprange"`
}

// HandleRangeCheck is the REST form of dhcppool_is_valid. The range shape is
// checked by binding, so a malformed range is a 400 here rather than a
// negative verdict.
func HandleRangeCheck(checker RangeChecker, obs Observer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q RangeCheckQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			_, msg := validate.Describe(err)
			c.JSON(http.StatusBadRequest, gin.H{
				"error": gin.H{"field": "range", "message": msg},
			})
			return
		}

		result, err := checker.IsValid(c.Request.Context(), c.Param("subnet"), q.Range)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": gin.H{"message": err.Error()},
			})
			return
		}
		obs.ObserveRangeCheck(result.Result)
		c.JSON(http.StatusOK, result)
	}
}
