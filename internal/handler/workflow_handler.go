package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/civic-report-api/internal/dto"
	"github.com/noah-isme/civic-report-api/internal/workflow"
	"github.com/noah-isme/civic-report-api/pkg/response"
)

// Transitions godoc
// @Summary Status transition tables
// @Description Clients build their status pickers from this instead of hard-coding the workflow.
// @Tags Workflow
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /api/workflow/transitions [get]
func Transitions(c *gin.Context) {
	response.JSON(c, http.StatusOK, dto.WorkflowResponse{
		IncidentReports:  table(workflow.Reports),
		DocumentRequests: table(workflow.Documents),
	}, nil)
}

func table(m *workflow.Machine) dto.WorkflowTable {
	return dto.WorkflowTable{States: m.States(), Transitions: m.Table()}
}
