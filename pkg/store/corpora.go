package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/CTAG07/Trickchain/pkg/corpus"
	"github.com/CTAG07/Trickchain/pkg/markov"
)

// ErrNotFound is returned when no corpus with the requested name is stored.
var ErrNotFound = errors.New("corpus not found")

// CorpusInfo holds the metadata of a stored corpus.
type CorpusInfo struct {
	Id        int       `json:"id"`
	Name      string    `json:"name"`
	Language  string    `json:"language"`
	Sequences int       `json:"sequences"`
	CreatedAt time.Time `json:"created_at"`
}

func scanCorpusInfo(row interface{ Scan(...any) error }) (CorpusInfo, error) {
	var info CorpusInfo
	var created int64
	if err := row.Scan(&info.Id, &info.Name, &info.Language, &info.Sequences, &created); err != nil {
		return CorpusInfo{}, err
	}
	info.CreatedAt = time.Unix(created, 0).UTC()
	return info, nil
}

// GetCorpusInfo retrieves the metadata of the corpus stored under name.
func (s *Store) GetCorpusInfo(ctx context.Context, name string) (CorpusInfo, error) {
	info, err := scanCorpusInfo(s.stmtGetCorpusInfo.QueryRowContext(ctx, name))
	if errors.Is(err, sql.ErrNoRows) {
		return CorpusInfo{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err != nil {
		return CorpusInfo{}, fmt.Errorf("failed to get corpus %q: %w", name, err)
	}
	return info, nil
}

// GetCorpusInfos returns the metadata of every stored corpus, ordered by name.
func (s *Store) GetCorpusInfos(ctx context.Context) ([]CorpusInfo, error) {
	rows, err := s.stmtGetCorpora.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query corpora: %w", err)
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	var infos []CorpusInfo
	for rows.Next() {
		info, err := scanCorpusInfo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan corpus row: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// CountCorpora returns the number of stored corpora.
func (s *Store) CountCorpora(ctx context.Context) (int, error) {
	var n int
	if err := s.stmtCountCorpora.QueryRowContext(ctx).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count corpora: %w", err)
	}
	return n, nil
}

// SaveCorpus stores c under its name together with its labels and the chains
// of m. A corpus already stored under the same name is replaced wholesale.
// The whole write happens inside one transaction.
func (s *Store) SaveCorpus(ctx context.Context, c *corpus.Corpus, m *markov.Model) (CorpusInfo, error) {
	if c.Name == "" {
		return CorpusInfo{}, errors.New("corpus has no name")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return CorpusInfo{}, fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	created := time.Now().UTC().Truncate(time.Second)
	var id int
	err = tx.StmtContext(ctx, s.stmtUpsertCorpus).
		QueryRowContext(ctx, c.Name, c.Language, c.Text(), c.Len(), created.Unix()).Scan(&id)
	if err != nil {
		return CorpusInfo{}, fmt.Errorf("failed to upsert corpus %q: %w", c.Name, err)
	}

	if err = clearCorpusRows(ctx, tx, id); err != nil {
		return CorpusInfo{}, err
	}

	if err = insertLabels(ctx, tx, id, c.Labels()); err != nil {
		return CorpusInfo{}, err
	}

	exported := m.Exported(c.Name)
	if err = insertChains(ctx, tx, id, exported); err != nil {
		return CorpusInfo{}, err
	}

	if err = tx.Commit(); err != nil {
		return CorpusInfo{}, fmt.Errorf("could not commit transaction: %w", err)
	}

	s.logger.Info("Saved corpus", "name", c.Name, "id", id, "sequences", c.Len(), "chains", len(exported.Chains))
	return CorpusInfo{Id: id, Name: c.Name, Language: c.Language, Sequences: c.Len(), CreatedAt: created}, nil
}

func clearCorpusRows(ctx context.Context, tx *sql.Tx, id int) error {
	for _, table := range []string{"corpus_labels", "markov_chains", "markov_starts"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE corpus_id = ?", id); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}

func insertLabels(ctx context.Context, tx *sql.Tx, id int, labels []string) error {
	labelled := false
	for _, label := range labels {
		if label != "" {
			labelled = true
			break
		}
	}
	if !labelled {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO corpus_labels (corpus_id, line_index, label) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare label insert: %w", err)
	}
	defer func(stmt *sql.Stmt) {
		_ = stmt.Close()
	}(stmt)

	for i, label := range labels {
		if _, err = stmt.ExecContext(ctx, id, i, label); err != nil {
			return fmt.Errorf("failed to insert label %d: %w", i, err)
		}
	}
	return nil
}

func insertChains(ctx context.Context, tx *sql.Tx, id int, exported markov.ExportedModel) error {
	chainStmt, err := tx.PrepareContext(ctx, "INSERT INTO markov_chains (corpus_id, state, next_token, is_end, frequency) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare chain insert: %w", err)
	}
	defer func(stmt *sql.Stmt) {
		_ = stmt.Close()
	}(chainStmt)

	for _, chain := range exported.Chains {
		if _, err = chainStmt.ExecContext(ctx, id, chain.State, chain.Next, chain.EOC, chain.Frequency); err != nil {
			return fmt.Errorf("failed to insert chain %q -> %q: %w", chain.State, chain.Next, err)
		}
	}

	startStmt, err := tx.PrepareContext(ctx, "INSERT INTO markov_starts (corpus_id, token, frequency) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare start insert: %w", err)
	}
	defer func(stmt *sql.Stmt) {
		_ = stmt.Close()
	}(startStmt)

	for token, freq := range exported.Starts {
		if _, err = startStmt.ExecContext(ctx, id, token, freq); err != nil {
			return fmt.Errorf("failed to insert start %q: %w", token, err)
		}
	}
	return nil
}

// LoadCorpus reconstructs the corpus stored under name, including its labels.
// The returned corpus has a fresh ID.
func (s *Store) LoadCorpus(ctx context.Context, name string) (*corpus.Corpus, error) {
	info, err := s.GetCorpusInfo(ctx, name)
	if err != nil {
		return nil, err
	}

	var text string
	if err = s.stmtGetSourceText.QueryRowContext(ctx, info.Id).Scan(&text); err != nil {
		return nil, fmt.Errorf("failed to read text of corpus %q: %w", name, err)
	}
	c := corpus.Load(text).Named(info.Name, info.Language)

	labels, err := s.getLabels(ctx, info.Id)
	if err != nil {
		return nil, err
	}
	if len(labels) == 0 {
		return c, nil
	}
	return c.WithLabels(labels)
}

func (s *Store) getLabels(ctx context.Context, id int) ([]string, error) {
	rows, err := s.stmtGetLabels.QueryContext(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query labels: %w", err)
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	var labels []string
	for rows.Next() {
		var label string
		if err = rows.Scan(&label); err != nil {
			return nil, fmt.Errorf("failed to scan label row: %w", err)
		}
		labels = append(labels, label)
	}
	return labels, rows.Err()
}

// LoadModel rebuilds the trained model stored for the corpus under name
// without retraining it.
func (s *Store) LoadModel(ctx context.Context, name string) (*markov.Model, error) {
	info, err := s.GetCorpusInfo(ctx, name)
	if err != nil {
		return nil, err
	}

	exported := markov.ExportedModel{
		Name:      info.Name,
		Order:     markov.ChainOrder,
		Sequences: info.Sequences,
		Starts:    make(map[string]int),
	}

	rows, err := s.stmtGetChains.QueryContext(ctx, info.Id)
	if err != nil {
		return nil, fmt.Errorf("failed to query chains: %w", err)
	}
	for rows.Next() {
		var chain markov.ExportedChain
		if err = rows.Scan(&chain.State, &chain.Next, &chain.EOC, &chain.Frequency); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("failed to scan chain row: %w", err)
		}
		exported.Chains = append(exported.Chains, chain)
	}
	_ = rows.Close()
	if err = rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.stmtGetStarts.QueryContext(ctx, info.Id)
	if err != nil {
		return nil, fmt.Errorf("failed to query starts: %w", err)
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)
	for rows.Next() {
		var token string
		var freq int
		if err = rows.Scan(&token, &freq); err != nil {
			return nil, fmt.Errorf("failed to scan start row: %w", err)
		}
		exported.Starts[token] = freq
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return markov.FromExported(exported)
}

// RemoveCorpus deletes the corpus stored under name along with all of its
// labels and chains.
func (s *Store) RemoveCorpus(ctx context.Context, name string) error {
	info, err := s.GetCorpusInfo(ctx, name)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	if err = clearCorpusRows(ctx, tx, info.Id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM corpora WHERE corpus_id = ?", info.Id); err != nil {
		return fmt.Errorf("failed to delete corpus: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	s.logger.Info("Removed corpus", "name", name, "id", info.Id)
	return nil
}
