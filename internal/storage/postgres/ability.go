package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/skillforge/internal/game/character"
	"github.com/cory-johannsen/skillforge/internal/game/craft"
)

// AbilityRepository persists the abilities characters learn. Names are unique
// per character regardless of case.
type AbilityRepository struct {
	db *pgxpool.Pool
}

// NewAbilityRepository creates an AbilityRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewAbilityRepository(db *pgxpool.Pool) *AbilityRepository {
	return &AbilityRepository{db: db}
}

// Save stores d for characterID.
//
// Postcondition: Returns an error wrapping craft.ErrDuplicateName when the
// character already knows an ability with the same name.
func (r *AbilityRepository) Save(ctx context.Context, characterID int64, d craft.Descriptor) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encoding ability %q: %w", d.Name, err)
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO abilities (character_id, name, descriptor) VALUES ($1, $2, $3)`,
		characterID, d.Name, data,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("ability %q: %w", d.Name, craft.ErrDuplicateName)
		}
		return fmt.Errorf("inserting ability %q: %w", d.Name, err)
	}
	return nil
}

// List returns characterID's abilities in the order they were learned.
func (r *AbilityRepository) List(ctx context.Context, characterID int64) ([]craft.Descriptor, error) {
	rows, err := r.db.Query(ctx,
		`SELECT descriptor FROM abilities WHERE character_id = $1 ORDER BY created_at ASC, id ASC`,
		characterID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing abilities: %w", err)
	}
	defer rows.Close()

	out := make([]craft.Descriptor, 0)
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scanning ability row: %w", err)
		}
		var d craft.Descriptor
		if err := json.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("decoding ability: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// LoadSkills fills c's skill book from the stored abilities.
func (r *AbilityRepository) LoadSkills(ctx context.Context, c *character.Character) error {
	abilities, err := r.List(ctx, c.ID)
	if err != nil {
		return err
	}
	c.Skills = character.NewSkillBook()
	for _, d := range abilities {
		if err := c.Skills.Learn(d); err != nil {
			return fmt.Errorf("loading skills for character %d: %w", c.ID, err)
		}
	}
	return nil
}

// Learner teaches abilities to a stored character: the row is written first,
// then the in-memory skill book is updated.
type Learner struct {
	ctx   context.Context
	repo  *AbilityRepository
	owner *character.Character
}

var _ craft.Learner = (*Learner)(nil)

// LearnerFor returns a craft.Learner that persists what c learns.
//
// Precondition: c.ID must reference a stored character.
func (r *AbilityRepository) LearnerFor(ctx context.Context, c *character.Character) *Learner {
	return &Learner{ctx: ctx, repo: r, owner: c}
}

// Learn implements craft.Learner.
func (l *Learner) Learn(d craft.Descriptor) error {
	if d.Name == "" {
		return character.ErrUnnamedAbility
	}
	if err := l.repo.Save(l.ctx, l.owner.ID, d); err != nil {
		return err
	}
	return l.owner.Learn(d)
}
