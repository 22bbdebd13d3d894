// Package testutil provides an in-memory implementation of the
// repository interfaces for handler tests. Behavior mirrors the Mongo
// implementations: sort orders, sentinel errors, password stripping in
// joined profiles, and the single-post author-join mismatch.
package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/lumeo-app/backend/internal/models"
	"github.com/lumeo-app/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store holds every collection in memory and implements all six
// repository interfaces. The fake clock advances one second per write
// so creation order and timestamp order always agree.
type Store struct {
	mu            sync.Mutex
	users         []models.User
	posts         []models.Post
	comments      []models.Comment
	favorites     []models.Favorite
	conversations []models.Conversation
	messages      []models.Message
	now           time.Time
}

// NewStore creates an empty Store
func NewStore() *Store {
	return &Store{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (s *Store) tick() time.Time {
	s.now = s.now.Add(time.Second)
	return s.now
}

// --- UserRepository ---

func (s *Store) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user.ID = primitive.NewObjectID()
	user.CreatedAt = s.tick()
	user.UpdatedAt = user.CreatedAt
	s.users = append(s.users, *user)
	return nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].Email == email {
			u := s.users[i]
			return &u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *Store) GetUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].ID == id {
			u := s.users[i]
			return &u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *Store) UpdateProfile(_ context.Context, id primitive.ObjectID, update repositories.ProfileUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].ID != id {
			continue
		}
		if update.Username != "" {
			s.users[i].Username = update.Username
		}
		if update.PhotoURL != "" {
			s.users[i].PhotoURL = update.PhotoURL
		}
		if update.PasswordHash != "" {
			s.users[i].Password = update.PasswordHash
		}
		s.users[i].UpdatedAt = s.tick()
		return nil
	}
	// An unknown id matches nothing, which Mongo reports as zero
	// modified documents.
	return repositories.ErrNotModified
}

// --- PostRepository ---

func (s *Store) CreatePost(_ context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	post.ID = primitive.NewObjectID()
	post.CreatedAt = s.tick()
	post.UpdatedAt = post.CreatedAt
	s.posts = append(s.posts, *post)
	return nil
}

func (s *Store) usernameByEmail(email string) string {
	for i := range s.users {
		if s.users[i].Email == email {
			return s.users[i].Username
		}
	}
	return ""
}

func (s *Store) isFavorite(userID, postID primitive.ObjectID) bool {
	for i := range s.favorites {
		if s.favorites[i].UserID == userID && s.favorites[i].PostID == postID {
			return true
		}
	}
	return false
}

func (s *Store) GetFeed(_ context.Context, viewerID primitive.ObjectID) ([]models.EnrichedPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	feed := make([]models.EnrichedPost, 0, len(s.posts))
	for _, p := range s.posts {
		feed = append(feed, models.EnrichedPost{
			Post:           p,
			IsFavorite:     s.isFavorite(viewerID, p.ID),
			AuthorUsername: s.usernameByEmail(p.Author),
		})
	}
	sort.SliceStable(feed, func(i, j int) bool {
		return feed[i].CreatedAt.After(feed[j].CreatedAt)
	})
	return feed, nil
}

func (s *Store) GetPostsByAuthor(_ context.Context, email string) ([]models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	posts := []models.Post{}
	for _, p := range s.posts {
		if p.Author == email {
			posts = append(posts, p)
		}
	}
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts, nil
}

func (s *Store) GetPostByID(_ context.Context, id, viewerID primitive.ObjectID) (*models.EnrichedPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.posts {
		if p.ID == id {
			// The live pipeline joins the email-valued author field
			// against users._id, which never matches, so
			// authorUsername stays empty on this path.
			return &models.EnrichedPost{
				Post:       p,
				IsFavorite: s.isFavorite(viewerID, p.ID),
			}, nil
		}
	}
	return nil, repositories.ErrNotFound
}

// --- CommentRepository ---

func (s *Store) CreateComment(_ context.Context, comment *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	comment.ID = primitive.NewObjectID()
	comment.CreatedAt = s.tick()
	s.comments = append(s.comments, *comment)
	return nil
}

func (s *Store) GetCommentsByPost(_ context.Context, postID primitive.ObjectID) ([]models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	comments := []models.Comment{}
	for _, cm := range s.comments {
		if cm.PostID == postID {
			comments = append(comments, cm)
		}
	}
	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].CreatedAt.Before(comments[j].CreatedAt)
	})
	return comments, nil
}

// --- FavoriteRepository ---

func (s *Store) Exists(_ context.Context, userID, postID primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isFavorite(userID, postID), nil
}

func (s *Store) AddFavorite(_ context.Context, favorite *models.Favorite) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	favorite.ID = primitive.NewObjectID()
	favorite.CreatedAt = s.tick()
	s.favorites = append(s.favorites, *favorite)
	return nil
}

func (s *Store) RemoveFavorite(_ context.Context, userID, postID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.favorites {
		if s.favorites[i].UserID == userID && s.favorites[i].PostID == postID {
			s.favorites = append(s.favorites[:i], s.favorites[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (s *Store) ListByUser(_ context.Context, userID primitive.ObjectID) ([]models.Favorite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	favorites := []models.Favorite{}
	for _, f := range s.favorites {
		if f.UserID == userID {
			favorites = append(favorites, f)
		}
	}
	return favorites, nil
}

func (s *Store) ListPostsByUser(_ context.Context, userID primitive.ObjectID) ([]models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	posts := []models.Post{}
	for _, f := range s.favorites {
		if f.UserID != userID {
			continue
		}
		for _, p := range s.posts {
			if p.ID == f.PostID {
				posts = append(posts, p)
				break
			}
		}
	}
	return posts, nil
}

// --- ConversationRepository ---

func (s *Store) CreateConversation(_ context.Context, conversation *models.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	conversation.ID = primitive.NewObjectID()
	conversation.CreatedAt = s.tick()
	conversation.UpdatedAt = conversation.CreatedAt
	s.conversations = append(s.conversations, *conversation)
	return nil
}

func (s *Store) strippedUser(id primitive.ObjectID) *models.User {
	for i := range s.users {
		if s.users[i].ID == id {
			u := s.users[i]
			u.Password = ""
			return &u
		}
	}
	return nil
}

func (s *Store) ListByParticipant(_ context.Context, userID primitive.ObjectID) ([]models.ConversationSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	summaries := []models.ConversationSummary{}
	for _, conv := range s.conversations {
		participates := false
		for _, p := range conv.Participants {
			if p == userID {
				participates = true
				break
			}
		}
		if !participates {
			continue
		}

		summary := models.ConversationSummary{Conversation: conv}
		for _, p := range conv.Participants {
			if u := s.strippedUser(p); u != nil {
				summary.ParticipantsData = append(summary.ParticipantsData, *u)
			}
		}
		if conv.LastMessage != nil {
			summary.LastMessageSender = s.strippedUser(conv.LastMessage.Sender)
		}
		summaries = append(summaries, summary)
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
	})
	return summaries, nil
}

func (s *Store) GetWithMessages(_ context.Context, id primitive.ObjectID) (*models.ConversationDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, conv := range s.conversations {
		if conv.ID != id {
			continue
		}
		detail := models.ConversationDetail{Conversation: conv, Messages: []models.Message{}}
		for _, m := range s.messages {
			if m.ConversationID == id {
				detail.Messages = append(detail.Messages, m)
			}
		}
		sort.SliceStable(detail.Messages, func(i, j int) bool {
			return detail.Messages[i].CreatedAt.After(detail.Messages[j].CreatedAt)
		})
		return &detail, nil
	}
	return nil, repositories.ErrNotFound
}

func (s *Store) FindByParticipants(_ context.Context, a, b primitive.ObjectID) (*models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, conv := range s.conversations {
		foundA, foundB := false, false
		for _, p := range conv.Participants {
			if p == a {
				foundA = true
			}
			if p == b {
				foundB = true
			}
		}
		if foundA && foundB {
			c := conv
			return &c, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *Store) SetLastMessage(_ context.Context, id primitive.ObjectID, last models.LastMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.conversations {
		if s.conversations[i].ID == id {
			l := last
			s.conversations[i].LastMessage = &l
			s.conversations[i].UpdatedAt = s.tick()
			return nil
		}
	}
	return nil
}

// --- MessageRepository ---

func (s *Store) CreateMessage(_ context.Context, message *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	message.ID = primitive.NewObjectID()
	message.CreatedAt = s.tick()
	s.messages = append(s.messages, *message)
	return nil
}

func (s *Store) ListByConversation(_ context.Context, conversationID primitive.ObjectID) ([]models.EnrichedMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	messages := []models.EnrichedMessage{}
	for _, m := range s.messages {
		if m.ConversationID != conversationID {
			continue
		}
		sender := s.strippedUser(m.Sender)
		if sender == nil {
			// The live pipeline's $unwind drops messages whose sender
			// no longer resolves.
			continue
		}
		messages = append(messages, models.EnrichedMessage{Message: m, SenderData: *sender})
	}
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].CreatedAt.After(messages[j].CreatedAt)
	})
	return messages, nil
}

var (
	_ repositories.UserRepository         = (*Store)(nil)
	_ repositories.PostRepository         = (*Store)(nil)
	_ repositories.CommentRepository      = (*Store)(nil)
	_ repositories.FavoriteRepository     = (*Store)(nil)
	_ repositories.ConversationRepository = (*Store)(nil)
	_ repositories.MessageRepository      = (*Store)(nil)
)
