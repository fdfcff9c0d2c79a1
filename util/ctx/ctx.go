package ctx

import (
	"context"
	"net/http"

	uuid "github.com/satori/go.uuid"
)

type key int

const (
	HeaderUUID = "X-CTX-CarbonTrack-UUID"

	uuidKey key = 0
)

func ifaceToString(v interface{}) string {
	if v != nil {
		return v.(string)
	}
	return ""
}

func getCtxString(ctx context.Context, k key) string {
	return ifaceToString(ctx.Value(k))
}

func GetUUID(ctx context.Context) string {
	return getCtxString(ctx, uuidKey)
}

func SetUUID(ctx context.Context, v string) context.Context {
	return context.WithValue(ctx, uuidKey, v)
}

// ParseCtx stores the request id of the incoming header in the request
// context, generating one when the caller did not send it. The id is echoed
// back in the response headers.
func ParseCtx(h http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		id := req.Header.Get(HeaderUUID)
		if id == "" {
			id = uuid.NewV4().String()
		}
		rw.Header().Set(HeaderUUID, id)

		h.ServeHTTP(rw, req.WithContext(SetUUID(req.Context(), id)))
	})
}
