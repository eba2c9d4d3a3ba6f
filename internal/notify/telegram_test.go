package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestTelegramNotifierSuccess(t *testing.T) {
	received := make(map[string]string)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "sendMessage") {
			t.Fatalf("路径应包含 sendMessage, 实际 %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("解析请求体失败: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}))
	defer srv.Close()

	notifier := NewTelegramNotifier("token", "chat", srv.URL, time.Second, zerolog.Nop())
	note := Note{Kind: KindSuccess, Title: "Thanks", Message: "Thanks for participation", Duration: 3 * time.Second}

	if err := notifier.Notify(context.Background(), note); err != nil {
		t.Fatalf("Telegram Notify 应成功: %v", err)
	}

	if received["chat_id"] != "chat" {
		t.Fatalf("chat_id 不正确: %#v", received)
	}
	if !strings.Contains(received["text"], "Thanks for participation") {
		t.Fatalf("text 应包含消息正文: %#v", received)
	}
}

func TestTelegramNotifierError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": false})
	}))
	defer srv.Close()

	notifier := NewTelegramNotifier("token", "chat", srv.URL, time.Second, zerolog.Nop())
	note := Note{Kind: KindError, Message: "Buy Value Not Valid"}

	if err := notifier.Notify(context.Background(), note); err == nil {
		t.Fatal("ok=false 应报错")
	}
}

func TestMultiNotifierFansOut(t *testing.T) {
	var count int
	fn := notifierFunc(func(ctx context.Context, note Note) error {
		count++
		return nil
	})

	multi := Multi{fn, fn, NewLogNotifier(zerolog.Nop())}
	if err := multi.Notify(context.Background(), Note{Kind: KindInfo, Message: "hi"}); err != nil {
		t.Fatalf("fan-out 不应报错: %v", err)
	}
	if count != 2 {
		t.Fatalf("期望派发 2 次, 实际 %d", count)
	}
}

type notifierFunc func(ctx context.Context, note Note) error

func (f notifierFunc) Notify(ctx context.Context, note Note) error {
	return f(ctx, note)
}
