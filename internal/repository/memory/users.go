package memory

import (
	"context"

	"github.com/spec-kit/support-desk/internal/domain"
)

type userRepository struct {
	v *view
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	return r.v.write(func(st *state) error {
		for _, u := range st.users {
			if u.Username == user.Username || u.Email == user.Email {
				return domain.ErrDuplicate
			}
		}
		st.nextUser++
		user.ID = st.nextUser
		user.CreatedAt = r.v.now()
		st.users[user.ID] = *user
		return nil
	})
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var out *domain.User
	err := r.v.read(func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return domain.ErrNotFound
		}
		out = &u
		return nil
	})
	return out, err
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var out *domain.User
	err := r.v.read(func(st *state) error {
		for _, u := range st.users {
			if u.Username == username {
				found := u
				out = &found
				return nil
			}
		}
		return domain.ErrNotFound
	})
	return out, err
}

func (r *userRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	var exists bool
	err := r.v.read(func(st *state) error {
		for _, u := range st.users {
			if u.Username == username || u.Email == email {
				exists = true
				break
			}
		}
		return nil
	})
	return exists, err
}
