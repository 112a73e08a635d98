package dto

import (
	"net/http"

	"github.com/wb-go/wbf/ginext"

	"egasrsvp/internal/event"
	"egasrsvp/internal/model"
)

const (
	ErrProcessRSVP   = "Erro ao processar RSVP"
	ErrInvalidData   = "Dados inválidos"
	ErrUnauthorized  = "Não autorizado"
	ErrFetchRSVPs    = "Erro ao buscar RSVPs"
	ErrInternal      = "Internal Server Error"
	ErrInvalidInvite = "Confirmação inválida"
	ErrMissingData   = "Parâmetro data obrigatório"

	MsgAlreadyEmpty = "Collection is already empty"
)

// RSVPRequest is the form body; qrData is the payload the browser computed.
type RSVPRequest struct {
	model.Guest
	QRData string `json:"qrData"`
}

type SubmitResponse struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
}

type ErrorResponse struct {
	Error   string            `json:"error"`
	Fields  map[string]string `json:"fields,omitempty"`
	Success bool              `json:"success"`
}

type RSVPListResponse struct {
	RSVPs []model.RSVP `json:"rsvps"`
}

type ResetResponse struct {
	Message      string `json:"message"`
	Success      bool   `json:"success"`
	DeletedCount int    `json:"deletedCount"`
}

type EventResponse struct {
	event.Event
	End       string          `json:"end"`
	Date      string          `json:"date"`
	Time      string          `json:"time"`
	Countdown event.Countdown `json:"countdown"`
	Started   bool            `json:"started"`
}

func BadResponseError(c *ginext.Context, desc string, fields map[string]string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: desc, Fields: fields})
}

func UnauthorizedError(c *ginext.Context) {
	c.JSON(http.StatusUnauthorized, ErrorResponse{Error: ErrUnauthorized})
}

func InternalServerError(c *ginext.Context, desc string) {
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: desc})
}

func SuccessResponse(c *ginext.Context, data any) {
	c.JSON(http.StatusOK, data)
}
