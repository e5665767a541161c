package worker

// envio_worker.go
// Processes jobs from QueueEnvio: renders the proposal, mails it as a PDF
// attachment and moves the proposal to "enviada".

import (
	"context"
	"encoding/json"
	"fmt"

	"propostas/internal/apierror"
	"propostas/internal/dto"
	"propostas/internal/model"

	"github.com/rs/zerolog/log"
)

// EnvioPayload is the job envelope sent to QueueEnvio.
type EnvioPayload struct {
	PropostaID    int64  `json:"proposta_id"`
	Email         string `json:"email"`
	SolicitadoPor int64  `json:"solicitado_por"`
}

type GeradorPDF interface {
	GerarPDF(ctx context.Context, principal *model.Principal, id int64) (*dto.DocumentoPDF, error)
}

type MarcadorEnvio interface {
	MarcarEnviada(ctx context.Context, id int64, destinatario string) error
}

type Remetente interface {
	SendProposta(to, subject, body, nomeArquivo string, pdf []byte) error
}

type EnvioWorker struct {
	gerador  GeradorPDF
	marcador MarcadorEnvio
	mailer   Remetente
}

func NewEnvioWorker(gerador GeradorPDF, marcador MarcadorEnvio, mailer Remetente) *EnvioWorker {
	return &EnvioWorker{gerador: gerador, marcador: marcador, mailer: mailer}
}

// Process sends one proposal. Errors wrapping ErrPermanente are not retried.
func (w *EnvioWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload EnvioPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("envio_worker: invalid payload: %v: %w", err, ErrPermanente)
	}
	if payload.Email == "" || payload.PropostaID == 0 {
		return fmt.Errorf("envio_worker: incomplete payload: %w", ErrPermanente)
	}

	// Access was checked when the job was requested.
	doc, err := w.gerador.GerarPDF(ctx, model.PrincipalSistema(), payload.PropostaID)
	if err != nil {
		if apierror.Known(err) {
			return fmt.Errorf("envio_worker: %v: %w", err, ErrPermanente)
		}
		return err
	}

	subject := "Proposta Comercial " + doc.Numero
	body := fmt.Sprintf("Olá,\n\nSegue em anexo a proposta comercial %s.\n\nAtenciosamente,\nMaqGases", doc.Numero)
	if err := w.mailer.SendProposta(payload.Email, subject, body, doc.NomeArquivo, doc.Conteudo); err != nil {
		log.Error().Err(err).Str("to", payload.Email).Int64("proposta_id", payload.PropostaID).Msg("envio_worker: failed to send email")
		return err
	}

	if err := w.marcador.MarcarEnviada(ctx, payload.PropostaID, payload.Email); err != nil {
		// Mail already left; retrying would send it twice.
		log.Error().Err(err).Int64("proposta_id", payload.PropostaID).Msg("envio_worker: sent but status not updated")
		return fmt.Errorf("envio_worker: %v: %w", err, ErrPermanente)
	}
	log.Info().Str("to", payload.Email).Str("numero", doc.Numero).Msg("envio_worker: proposta sent successfully")
	return nil
}
