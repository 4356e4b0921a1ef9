package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotificationEvents_ProjectOntoRows(t *testing.T) {
	cases := []struct {
		name  string
		event NotificationEvent
		check func(t *testing.T, n *Notification)
	}{
		{
			name:  "follow",
			event: FollowEvent{ActorID: "alice", ActorName: "Alice"},
			check: func(t *testing.T, n *Notification) {
				assert.Equal(t, NotificationFollow, n.Type)
				assert.Equal(t, "/profile/alice", n.Link)
				assert.Empty(t, n.ContentTitle)
			},
		},
		{
			name:  "post",
			event: PostEvent{ActorID: "alice", PostID: "42", Title: "Launch Day"},
			check: func(t *testing.T, n *Notification) {
				assert.Equal(t, NotificationPost, n.Type)
				assert.Equal(t, "/posts/42", n.Link)
				assert.Equal(t, "Launch Day", n.ContentTitle)
			},
		},
		{
			name:  "like",
			event: LikeEvent{ActorID: "alice", ContentTitle: "Weather Station", Link: "/projects/7"},
			check: func(t *testing.T, n *Notification) {
				assert.Equal(t, NotificationLike, n.Type)
				assert.Equal(t, "Weather Station", n.ContentTitle)
				assert.Equal(t, "/projects/7", n.Link)
			},
		},
		{
			name:  "comment",
			event: CommentEvent{ActorID: "alice", ContentTitle: "Weather Station", Link: "/projects/7#c3"},
			check: func(t *testing.T, n *Notification) {
				assert.Equal(t, NotificationComment, n.Type)
				assert.Equal(t, "/projects/7#c3", n.Link)
			},
		},
		{
			name:  "message",
			event: MessageEvent{ActorID: "alice", ActorName: "Alice"},
			check: func(t *testing.T, n *Notification) {
				assert.Equal(t, NotificationMessage, n.Type)
				assert.Equal(t, "/messages/with/alice", n.Link)
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			n := tc.event.Row("bob")
			assert.Equal(t, "bob", n.RecipientID)
			assert.Equal(t, "alice", n.ActorID)
			assert.Equal(t, tc.event.Kind(), n.Type)
			assert.False(t, n.IsRead)
			tc.check(t, n)
		})
	}
}
