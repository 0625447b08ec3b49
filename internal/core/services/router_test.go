package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/tanushree1025/DESIGN-THEETA/internal/app/registry"
	"github.com/tanushree1025/DESIGN-THEETA/internal/core/domain"
)

func storedFrom(sender *domain.User, receiverID *uuid.UUID, body string) *domain.StoredMessage {
	return &domain.StoredMessage{
		ID:         uuid.New(),
		Sender:     domain.Sender{ID: sender.ID, Name: sender.Name, Role: sender.Role},
		ReceiverID: receiverID,
		Role:       sender.Role,
		Body:       body,
		Kind:       domain.KindText,
		Timestamp:  time.Now().UTC(),
	}
}

func TestDeliverMessageReachesSenderAdminsAndReceiverOnly(t *testing.T) {
	hub := registry.NewRegistry()
	router := NewRouter(testLogger(), hub)

	sender := testUser("alice", domain.RoleClient)
	receiver := testUser("dana", domain.RoleDesigner)
	admin := testUser("root", domain.RoleAdmin)
	bystander := testUser("bob", domain.RoleClient)

	senderConn := newStubClient(*sender)
	receiverConn := newStubClient(*receiver)
	adminConn := newStubClient(*admin)
	bystanderConn := newStubClient(*bystander)
	for _, c := range []*stubClient{senderConn, receiverConn, adminConn, bystanderConn} {
		hub.Register(c)
	}

	router.DeliverMessage(context.Background(), storedFrom(sender, &receiver.ID, "hello"))

	require.Len(t, senderConn.framesFor(t, domain.EventChatMessage), 1, "sender echo-back")
	require.Len(t, receiverConn.framesFor(t, domain.EventChatMessage), 1)
	require.Len(t, adminConn.framesFor(t, domain.EventChatMessage), 1)
	require.Empty(t, bystanderConn.framesFor(t, domain.EventChatMessage), "unrelated connection must not receive")
}

func TestDeliverMessageWithoutReceiverSkipsNonAdmins(t *testing.T) {
	hub := registry.NewRegistry()
	router := NewRouter(testLogger(), hub)

	sender := testUser("alice", domain.RoleClient)
	other := testUser("bob", domain.RoleClient)
	senderConn := newStubClient(*sender)
	otherConn := newStubClient(*other)
	hub.Register(senderConn)
	hub.Register(otherConn)

	router.DeliverMessage(context.Background(), storedFrom(sender, nil, "to admins"))

	require.Len(t, senderConn.framesFor(t, domain.EventChatMessage), 1)
	require.Empty(t, otherConn.framesFor(t, domain.EventChatMessage))
}

func TestDeliverMessageAtMostOncePerConnection(t *testing.T) {
	hub := registry.NewRegistry()
	router := NewRouter(testLogger(), hub)

	// an admin messaging themselves sits in every recipient group
	admin := testUser("root", domain.RoleAdmin)
	conn := newStubClient(*admin)
	hub.Register(conn)

	router.DeliverMessage(context.Background(), storedFrom(admin, &admin.ID, "note to self"))

	require.Len(t, conn.framesFor(t, domain.EventChatMessage), 1)
}

func TestDeliverMessageReachesEveryConnectionOfReceiver(t *testing.T) {
	hub := registry.NewRegistry()
	router := NewRouter(testLogger(), hub)

	sender := testUser("alice", domain.RoleClient)
	receiver := testUser("dana", domain.RoleDesigner)
	senderConn := newStubClient(*sender)
	receiverPhone := newStubClient(*receiver)
	receiverLaptop := newStubClient(*receiver)
	hub.Register(senderConn)
	hub.Register(receiverPhone)
	hub.Register(receiverLaptop)

	router.DeliverMessage(context.Background(), storedFrom(sender, &receiver.ID, "ping"))

	require.Len(t, receiverPhone.framesFor(t, domain.EventChatMessage), 1)
	require.Len(t, receiverLaptop.framesFor(t, domain.EventChatMessage), 1)
}

func TestFailedSendIsDroppedOthersStillDelivered(t *testing.T) {
	hub := registry.NewRegistry()
	router := NewRouter(testLogger(), hub)

	sender := testUser("alice", domain.RoleClient)
	receiver := testUser("dana", domain.RoleDesigner)
	senderConn := newStubClient(*sender)
	senderConn.failSend = true
	receiverConn := newStubClient(*receiver)
	hub.Register(senderConn)
	hub.Register(receiverConn)

	router.DeliverMessage(context.Background(), storedFrom(sender, &receiver.ID, "still arrives"))

	require.Len(t, receiverConn.framesFor(t, domain.EventChatMessage), 1)
}

func TestDeliverTypingCarriesSenderName(t *testing.T) {
	hub := registry.NewRegistry()
	router := NewRouter(testLogger(), hub)

	sender := testUser("alice", domain.RoleClient)
	receiver := testUser("dana", domain.RoleDesigner)
	receiverConn := newStubClient(*receiver)
	hub.Register(receiverConn)

	router.DeliverTyping(context.Background(), sender, &receiver.ID)

	frames := receiverConn.framesFor(t, domain.EventTyping)
	require.Len(t, frames, 1)
	var ev domain.TypingEvent
	require.NoError(t, json.Unmarshal(frames[0].Data, &ev))
	require.Equal(t, "alice", ev.SenderName)
}
