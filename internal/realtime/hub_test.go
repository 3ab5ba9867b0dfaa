package realtime_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/frahmantamala/hr-management/internal"
	"github.com/frahmantamala/hr-management/internal/auth"
	"github.com/frahmantamala/hr-management/internal/realtime"
	"github.com/frahmantamala/hr-management/pkg/logger"
	"github.com/gorilla/websocket"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type stubResolver map[string]*auth.User

func (s stubResolver) ResolveUser(_ context.Context, token string) (*auth.User, error) {
	if u, ok := s[token]; ok {
		return u, nil
	}
	return nil, internal.ErrSessionExpired
}

// members maps channel id to the user ids allowed in it.
type members map[int64][]int64

func (m members) CanJoin(_ context.Context, userID, channelID int64) (bool, error) {
	for _, id := range m[channelID] {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

var _ = Describe("Hub", func() {
	var (
		hub    *realtime.Hub
		server *httptest.Server
		wsURL  string
	)

	dial := func(token string) *websocket.Conn {
		conn, _, err := websocket.DefaultDialer.Dial(wsURL+"?token="+token, nil)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() { _ = conn.Close() })
		return conn
	}

	read := func(conn *websocket.Conn) realtime.Envelope {
		Expect(conn.SetReadDeadline(time.Now().Add(2 * time.Second))).To(Succeed())
		var env realtime.Envelope
		Expect(conn.ReadJSON(&env)).To(Succeed())
		return env
	}

	BeforeEach(func() {
		hub = realtime.NewHub(members{7: {1, 2}}, logger.Discard())
		resolver := stubResolver{
			"alice": {ID: 1, Role: auth.RoleEmployee},
			"bob":   {ID: 2, Role: auth.RoleEmployee},
			"eve":   {ID: 3, Role: auth.RoleIntern},
		}
		server = httptest.NewServer(realtime.NewHandler(hub, resolver, "*", logger.Discard()))
		wsURL = "ws" + strings.TrimPrefix(server.URL, "http")
	})

	AfterEach(func() {
		hub.Close()
		server.Close()
	})

	It("rejects the handshake without a valid session", func() {
		_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
		Expect(err).To(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))

		_, resp, err = websocket.DefaultDialer.Dial(wsURL+"?token=stale", nil)
		Expect(err).To(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
	})

	It("delivers broadcasts to joined members only", func() {
		alice := dial("alice")
		bob := dial("bob")
		eve := dial("eve")

		Expect(alice.WriteJSON(realtime.Inbound{Type: realtime.TypeJoin, ChannelID: 7})).To(Succeed())
		Expect(read(alice).Type).To(Equal(realtime.TypeJoined))
		Expect(bob.WriteJSON(realtime.Inbound{Type: realtime.TypeJoin, ChannelID: 7})).To(Succeed())
		Expect(read(bob).Type).To(Equal(realtime.TypeJoined))

		Expect(eve.WriteJSON(realtime.Inbound{Type: realtime.TypeJoin, ChannelID: 7})).To(Succeed())
		refused := read(eve)
		Expect(refused.Type).To(Equal(realtime.TypeError))
		Expect(refused.ChannelID).To(Equal(int64(7)))

		Eventually(func() int { return hub.RoomSize(7) }).Should(Equal(2))
		hub.Broadcast(7, "message.created", map[string]string{"body": "hi"})

		for _, conn := range []*websocket.Conn{alice, bob} {
			env := read(conn)
			Expect(env.Type).To(Equal("message.created"))
			var payload map[string]string
			Expect(json.Unmarshal(env.Payload, &payload)).To(Succeed())
			Expect(payload["body"]).To(Equal("hi"))
		}
	})

	It("stops delivering after leave and disconnect", func() {
		alice := dial("alice")
		bob := dial("bob")
		for _, conn := range []*websocket.Conn{alice, bob} {
			Expect(conn.WriteJSON(realtime.Inbound{Type: realtime.TypeJoin, ChannelID: 7})).To(Succeed())
			Expect(read(conn).Type).To(Equal(realtime.TypeJoined))
		}

		Expect(alice.WriteJSON(realtime.Inbound{Type: realtime.TypeLeave, ChannelID: 7})).To(Succeed())
		Expect(read(alice).Type).To(Equal(realtime.TypeLeft))
		Expect(hub.RoomSize(7)).To(Equal(1))

		Expect(bob.Close()).To(Succeed())
		Eventually(func() int { return hub.RoomSize(7) }).Should(Equal(0))
	})
})
