package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	enquirydomain "github.com/smallbiznis/glamora/internal/enquiry/domain"
	"github.com/smallbiznis/glamora/pkg/db/pagination"
)

func (s *Server) CreateEnquiry(c *gin.Context) {
	var req enquirydomain.CreateEnquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.enquirySvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetEnquiry(c *gin.Context) {
	resp, err := s.enquirySvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListEnquiries(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Status     string `form:"status"`
		CustomerID string `form:"customer_id"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.enquirySvc.List(c.Request.Context(), enquirydomain.ListEnquiryRequest{
		Pagination: query.Pagination,
		Status:     strings.TrimSpace(query.Status),
		CustomerID: strings.TrimSpace(query.CustomerID),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.Enquiries, "page_info": resp.PageInfo})
}
