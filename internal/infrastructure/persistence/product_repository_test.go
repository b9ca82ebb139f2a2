package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==================== Reads ====================

func TestGormProductRepository_FindByID(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()
	p := seedProduct(t, db, "Desk Lamp", "25.50", 4)

	found, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Desk Lamp", found.Name.En)
	assert.Equal(t, "Desk Lamp (fr)", found.Name.Fr)
	assert.Equal(t, "25.50", found.Price.String())
	assert.Equal(t, 4, found.Stock)
	assert.Equal(t, 1, found.Version)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormProductRepository_FindByIDs(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()
	a := seedProduct(t, db, "A", "1.00", 1)
	b := seedProduct(t, db, "B", "2.00", 2)
	seedProduct(t, db, "C", "3.00", 3)

	found, err := repo.FindByIDs(ctx, []uuid.UUID{a.ID, b.ID, uuid.New()})
	require.NoError(t, err)
	assert.Len(t, found, 2)

	empty, err := repo.FindByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

// ==================== Writes ====================

func TestGormProductRepository_SaveUpserts(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()
	p := newProduct(t, "Chair", "40.00", 10)

	require.NoError(t, repo.Save(ctx, p))

	require.NoError(t, p.SetPrice(valueobject.MustParseMoney("35.00")))
	require.NoError(t, p.SetStock(7))
	p.IncrementVersion()
	require.NoError(t, repo.Save(ctx, p))

	found, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "35.00", found.Price.String())
	assert.Equal(t, 7, found.Stock)
	assert.Equal(t, 2, found.Version)
}

func TestGormProductRepository_DecrementStock(t *testing.T) {
	tests := []struct {
		name      string
		stock     int
		quantity  int
		wantOK    bool
		wantStock int
	}{
		{name: "enough stock", stock: 5, quantity: 3, wantOK: true, wantStock: 2},
		{name: "exact stock", stock: 3, quantity: 3, wantOK: true, wantStock: 0},
		{name: "not enough stock", stock: 2, quantity: 3, wantOK: false, wantStock: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := newSQLiteDB(t)
			repo := NewGormProductRepository(db)
			ctx := context.Background()
			p := seedProduct(t, db, "Mug", "8.00", tt.stock)

			ok, err := repo.DecrementStock(ctx, p.ID, tt.quantity)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)

			found, err := repo.FindByID(ctx, p.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStock, found.Stock)
		})
	}
}

func TestGormProductRepository_DecrementStock_RejectsNonPositive(t *testing.T) {
	repo := NewGormProductRepository(newSQLiteDB(t))
	_, err := repo.DecrementStock(context.Background(), uuid.New(), 0)
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestGormProductRepository_Delete(t *testing.T) {
	t.Run("unreferenced product", func(t *testing.T) {
		db := newSQLiteDB(t)
		repo := NewGormProductRepository(db)
		ctx := context.Background()
		p := seedProduct(t, db, "Vase", "12.00", 1)

		referenced, err := repo.IsReferencedByOrders(ctx, p.ID)
		require.NoError(t, err)
		assert.False(t, referenced)

		require.NoError(t, repo.Delete(ctx, p.ID))
		_, err = repo.FindByID(ctx, p.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("missing product", func(t *testing.T) {
		repo := NewGormProductRepository(newSQLiteDB(t))
		err := repo.Delete(context.Background(), uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("product referenced by an order item", func(t *testing.T) {
		db := newSQLiteDB(t)
		repo := NewGormProductRepository(db)
		ctx := context.Background()
		p := seedProduct(t, db, "Rug", "99.00", 3)
		seedOrder(t, db, newOrder(t, uuid.New(), p), fixedTime(1))

		referenced, err := repo.IsReferencedByOrders(ctx, p.ID)
		require.NoError(t, err)
		assert.True(t, referenced)

		err = repo.Delete(ctx, p.ID)
		assert.ErrorIs(t, err, shared.ErrConflict)
	})
}

func TestGormProductRepository_DecrementStock_SQL(t *testing.T) {
	gormDB, mock, mockDB := newMockGorm(t)
	defer mockDB.Close()
	repo := NewGormProductRepository(gormDB)
	id := uuid.New()

	mock.ExpectExec(`UPDATE "products" SET "stock"=stock - \$1,"updated_at"=\$2 WHERE id = \$3 AND stock >= \$4`).
		WithArgs(2, sqlmock.AnyArg(), id, 2).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.DecrementStock(context.Background(), id, 2)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsConstraintViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(errors.New(`ERROR: duplicate key value violates unique constraint "idx_orders_order_number" (SQLSTATE 23505)`)))
	assert.True(t, isUniqueViolation(errors.New("UNIQUE constraint failed: orders.order_number")))
	assert.False(t, isUniqueViolation(errors.New("connection reset")))
	assert.False(t, isUniqueViolation(nil))

	assert.True(t, isForeignKeyViolation(errors.New("FOREIGN KEY constraint failed")))
	assert.True(t, isForeignKeyViolation(errors.New(`update or delete on table "products" violates foreign key constraint (SQLSTATE 23503)`)))
	assert.False(t, isForeignKeyViolation(errors.New("syntax error")))
}
