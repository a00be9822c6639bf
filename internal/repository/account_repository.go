package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dagim-hg/Astu-Steam-dev-project-sub000/internal/domain"
)

// AccountRepository defines persistence access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	Update(ctx context.Context, account *domain.Account) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetBySystemID(ctx context.Context, systemID string) (*domain.Account, error)
	List(ctx context.Context) ([]domain.Account, error)
	ListByRole(ctx context.Context, role domain.Role) ([]domain.Account, error)
	ListStaffByDepartment(ctx context.Context, department string) ([]domain.Account, error)
}

type accountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository returns a Postgres-backed implementation.
func NewAccountRepository(pool *pgxpool.Pool) AccountRepository {
	return &accountRepository{pool: pool}
}

const accountColumns = `id, system_id, name, email, password_hash, role, department,
       student_id_num, dorm_block, reset_code, reset_code_expiry, created_at, updated_at`

func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	const query = `
        INSERT INTO accounts (system_id, name, email, password_hash, role, department, student_id_num, dorm_block)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		account.SystemID,
		account.Name,
		account.Email,
		account.PasswordHash,
		account.Role,
		account.Department,
		account.StudentIDNum,
		account.DormBlock,
	).Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
}

func (r *accountRepository) Update(ctx context.Context, account *domain.Account) error {
	const query = `
        UPDATE accounts SET name=$1, email=$2, password_hash=$3, department=$4,
            student_id_num=$5, dorm_block=$6, reset_code=$7, reset_code_expiry=$8, updated_at=NOW()
        WHERE id=$9`
	cmd, err := r.pool.Exec(ctx, query,
		account.Name,
		account.Email,
		account.PasswordHash,
		account.Department,
		account.StudentIDNum,
		account.DormBlock,
		account.ResetCode,
		account.ResetCodeExpiry,
		account.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *accountRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM accounts WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *accountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	return r.fetchSingle(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id=$1`, id)
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.fetchSingle(ctx, `SELECT `+accountColumns+` FROM accounts WHERE LOWER(email)=LOWER($1)`, email)
}

func (r *accountRepository) GetBySystemID(ctx context.Context, systemID string) (*domain.Account, error) {
	return r.fetchSingle(ctx, `SELECT `+accountColumns+` FROM accounts WHERE system_id=$1`, systemID)
}

func (r *accountRepository) List(ctx context.Context) ([]domain.Account, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+accountColumns+` FROM accounts ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAccounts(rows)
}

func (r *accountRepository) ListByRole(ctx context.Context, role domain.Role) ([]domain.Account, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE role=$1 ORDER BY created_at ASC`, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAccounts(rows)
}

func (r *accountRepository) ListStaffByDepartment(ctx context.Context, department string) ([]domain.Account, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+accountColumns+` FROM accounts
         WHERE role=$1 AND LOWER(department)=LOWER($2) ORDER BY created_at ASC`,
		domain.RoleStaff, department)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAccounts(rows)
}

func (r *accountRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Account, error) {
	var account domain.Account
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&account.ID,
		&account.SystemID,
		&account.Name,
		&account.Email,
		&account.PasswordHash,
		&account.Role,
		&account.Department,
		&account.StudentIDNum,
		&account.DormBlock,
		&account.ResetCode,
		&account.ResetCodeExpiry,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &account, nil
}

func scanAccounts(rows pgx.Rows) ([]domain.Account, error) {
	var result []domain.Account
	for rows.Next() {
		var account domain.Account
		if err := rows.Scan(
			&account.ID,
			&account.SystemID,
			&account.Name,
			&account.Email,
			&account.PasswordHash,
			&account.Role,
			&account.Department,
			&account.StudentIDNum,
			&account.DormBlock,
			&account.ResetCode,
			&account.ResetCodeExpiry,
			&account.CreatedAt,
			&account.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, account)
	}
	return result, rows.Err()
}
