package httpx

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/fortishield/fortishield-qa-framework/internal/common/logtrace"
)

// SendJsonRsp sends a JSON response with the given status code and message.
// Pre-marshaled JSON may be passed as a string or []byte and is written as is.
func SendJsonRsp(ctx context.Context, w http.ResponseWriter, statusCode int, msg any) {
	var msgJson []byte
	switch m := msg.(type) {
	case string:
		if json.Valid([]byte(m)) {
			msgJson = []byte(m)
		}
	case []byte:
		if json.Valid(m) {
			msgJson = m
		}
	default:
		var err error
		msgJson, err = json.Marshal(msg)
		if err != nil {
			log.Ctx(ctx).Err(err).Msg("unable to marshal json")
			ErrApplicationError("Id: " + logtrace.RequestIdFromContext(ctx)).Send(w)
			return
		}
	}
	if msgJson == nil {
		log.Ctx(ctx).Error().Msg("pre-marshaled response is not valid json")
		ErrApplicationError("Id: " + logtrace.RequestIdFromContext(ctx)).Send(w)
		return
	}
	w.Header().Set("Content-Type", ContentTypeJSON)
	w.WriteHeader(statusCode)
	w.Write(msgJson)
}

// SendTextRsp writes a plain text body, as used by raw token responses.
func SendTextRsp(w http.ResponseWriter, statusCode int, body string) {
	w.Header().Set("Content-Type", ContentTypeText)
	w.WriteHeader(statusCode)
	w.Write([]byte(body))
}
