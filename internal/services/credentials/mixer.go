package credentials

import (
	"context"
	"errors"

	"github.com/mcoot/lanterngame/internal/dependencies/random"
	"github.com/mcoot/lanterngame/internal/model"
	"github.com/mcoot/lanterngame/internal/storage"
)

// RandomMixer draws the correct credential from a game user bound to the
// station when one exists, otherwise from any user with a password.
// Decoys alternate between another user's own password and a password from
// the fake pool.
type RandomMixer struct {
	storage storage.CredentialStore
	random  random.Random
	decoys  int
}

var _ Mixer = (*RandomMixer)(nil)

// NewRandomMixer creates a mixer offering up to decoys wrong entries
func NewRandomMixer(store storage.CredentialStore, rnd random.Random, decoys int) *RandomMixer {
	return &RandomMixer{
		storage: store,
		random:  rnd,
		decoys:  decoys,
	}
}

// Assemble builds a shuffled credential set for the station.
// Fails with model.ErrCredentialPoolEmpty when no user has a password.
func (m *RandomMixer) Assemble(ctx context.Context, stationID model.StationID) ([]model.GameUserEntry, error) {
	users, err := m.storage.ListGameUsers(ctx)
	if err != nil {
		return nil, err
	}
	usable := make([]*model.GameUser, 0, len(users))
	for _, u := range users {
		if len(u.Passwords) > 0 {
			usable = append(usable, u)
		}
	}
	if len(usable) == 0 {
		return nil, model.ErrCredentialPoolEmpty
	}

	fakes, err := m.storage.GetFakePasswords(ctx)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return nil, err
	}

	correct := m.pickCorrect(usable, stationID)
	entries := []model.GameUserEntry{
		m.entry(correct.UserName, random.Pick(m.random, correct.Passwords), true, model.PasswordTypeUser),
	}

	others := make([]*model.GameUser, 0, len(usable)-1)
	for _, u := range usable {
		if u.UserName != correct.UserName {
			others = append(others, u)
		}
	}
	random.Shuffle(m.random, len(others), func(i, j int) { others[i], others[j] = others[j], others[i] })

	for i, u := range others {
		if i >= m.decoys {
			break
		}
		if i%2 == 1 && len(fakes) > 0 {
			entries = append(entries, m.entry(u.UserName, random.Pick(m.random, fakes), false, model.PasswordTypeFake))
			continue
		}
		entries = append(entries, m.entry(u.UserName, random.Pick(m.random, u.Passwords), false, model.PasswordTypeUser))
	}

	random.Shuffle(m.random, len(entries), func(i, j int) { entries[i], entries[j] = entries[j], entries[i] })
	return entries, nil
}

func (m *RandomMixer) pickCorrect(users []*model.GameUser, stationID model.StationID) *model.GameUser {
	var bound []*model.GameUser
	for _, u := range users {
		if u.StationID != nil && *u.StationID == stationID {
			bound = append(bound, u)
		}
	}
	if len(bound) > 0 {
		return random.Pick(m.random, bound)
	}
	return random.Pick(m.random, users)
}

func (m *RandomMixer) entry(userName, password string, correct bool, kind model.PasswordType) model.GameUserEntry {
	return model.GameUserEntry{
		UserName:     userName,
		Password:     password,
		IsCorrect:    correct,
		PasswordType: kind,
		PasswordHint: m.hint(password),
	}
}

func (m *RandomMixer) hint(password string) model.PasswordHint {
	runes := []rune(password)
	if len(runes) == 0 {
		return model.PasswordHint{}
	}
	i := m.random.Intn(len(runes))
	return model.PasswordHint{Index: i, Character: string(runes[i])}
}
