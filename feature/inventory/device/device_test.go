package device

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"inventory-server/core/fieldbag"
	"inventory-server/core/reconcile"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func testContext(db *gorm.DB) *reconcile.Context {
	return &reconcile.Context{
		DB:       db,
		Logger:   zap.NewNop(),
		Conf:     reconcile.Conf{ComponentGraphicCard: true, ComponentSoundCard: true},
		Itemtype: "Computer",
		ItemID:   12,
	}
}

func existingDeviceColumns() []string {
	return []string{"id", "is_dynamic", "designation", "manufacturers_id", "master_id"}
}

func TestPrepareDesignationFallback(t *testing.T) {
	db, _ := setupMockDB(t)
	rctx := testContext(db)

	r := NewGraphicCard()
	prepared := r.Prepare(rctx, []fieldbag.Item{
		fieldbag.FromMap(map[string]any{"name": "GeForce GTX 1650"}),
		fieldbag.FromMap(map[string]any{"chipset": "Intel UHD"}),
		fieldbag.FromMap(map[string]any{}),
	})

	require.Len(t, prepared, 3)
	assert.Equal(t, "GeForce GTX 1650", prepared[0].GetString("designation"))
	assert.Equal(t, "Intel UHD", prepared[1].GetString("designation"))
	assert.Equal(t, "Graphic card", prepared[2].GetString("designation"))
}

func TestHandleIncompatibleItemtype(t *testing.T) {
	db, mock := setupMockDB(t)
	rctx := testContext(db)
	rctx.Itemtype = "Printer"

	r := NewGraphicCard()
	err := r.Handle(context.Background(), rctx, []fieldbag.Item{
		fieldbag.FromMap(map[string]any{"designation": "GeForce GTX 1650"}),
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleMatchedDeviceUntouched(t *testing.T) {
	db, mock := setupMockDB(t)
	rctx := testContext(db)

	incoming := fieldbag.FromMap(map[string]any{"designation": "Sound Blaster Z"})
	incoming.Set("manufacturers_id", fieldbag.Number(3))

	// No extra columns on sound card links, so a match issues no writes.
	mock.ExpectPrepare("SELECT link.id AS id(.+)FROM item_sound_cards AS link").
		ExpectQuery().
		WithArgs("Computer", int64(12)).
		WillReturnRows(sqlmock.NewRows(existingDeviceColumns()).
			AddRow(50, true, "Sound Blaster Z", 3, 9))

	r := NewSoundCard()
	err := r.Handle(context.Background(), rctx, []fieldbag.Item{incoming})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleRefreshesMatchedLinkColumns(t *testing.T) {
	db, mock := setupMockDB(t)
	rctx := testContext(db)

	// The stored link reports an older memory size; the matched link is
	// kept but its memory column follows the submission.
	incoming := fieldbag.FromMap(map[string]any{"designation": "GeForce GTX 1650", "memory": "4096"})
	incoming.Set("manufacturers_id", fieldbag.Number(3))

	mock.ExpectPrepare("SELECT link.id AS id(.+)FROM item_graphic_cards AS link").
		ExpectQuery().
		WithArgs("Computer", int64(12)).
		WillReturnRows(sqlmock.NewRows(existingDeviceColumns()).
			AddRow(50, true, "GeForce GTX 1650", 3, 9))

	mock.ExpectBegin()
	mock.ExpectPrepare("UPDATE `item_graphic_cards` SET `memory`")
	mock.ExpectPrepare("UPDATE `item_graphic_cards` SET `memory`").
		ExpectExec().
		WithArgs("4096", int64(50)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	r := NewGraphicCard()
	err := r.Handle(context.Background(), rctx, []fieldbag.Item{incoming})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleLinksNewDevice(t *testing.T) {
	db, mock := setupMockDB(t)
	rctx := testContext(db)

	incoming := fieldbag.FromMap(map[string]any{"designation": "Sound Blaster Z"})
	incoming.Set("manufacturers_id", fieldbag.Number(0))

	mock.ExpectPrepare("SELECT link.id AS id(.+)FROM item_sound_cards AS link").
		ExpectQuery().
		WillReturnRows(sqlmock.NewRows(existingDeviceColumns()))

	// Master exists already, shared with other assets.
	mock.ExpectPrepare("SELECT (.+) FROM `sound_cards`").
		ExpectQuery().
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(9))

	mock.ExpectBegin()
	mock.ExpectPrepare("INSERT INTO `item_sound_cards`")
	mock.ExpectPrepare("INSERT INTO `item_sound_cards`").
		ExpectExec().
		WillReturnResult(sqlmock.NewResult(51, 1))
	mock.ExpectCommit()

	r := NewSoundCard()
	err := r.Handle(context.Background(), rctx, []fieldbag.Item{incoming})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleCreatesMasterOnce(t *testing.T) {
	db, mock := setupMockDB(t)
	rctx := testContext(db)

	first := fieldbag.FromMap(map[string]any{"designation": "GeForce GTX 1650", "memory": "4096"})
	first.Set("manufacturers_id", fieldbag.Number(0))

	mock.ExpectPrepare("SELECT link.id AS id(.+)FROM item_graphic_cards AS link").
		ExpectQuery().
		WillReturnRows(sqlmock.NewRows(existingDeviceColumns()))

	mock.ExpectPrepare("SELECT (.+) FROM `graphic_cards`").
		ExpectQuery().
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectBegin()
	mock.ExpectPrepare("INSERT INTO `graphic_cards`")
	mock.ExpectPrepare("INSERT INTO `graphic_cards`").
		ExpectExec().
		WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectCommit()
	mock.ExpectPrepare("SELECT (.+) FROM `graphic_cards`(.+)ORDER BY id DESC").
		ExpectQuery().
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(9))

	mock.ExpectBegin()
	mock.ExpectPrepare("INSERT INTO `item_graphic_cards`")
	mock.ExpectPrepare("INSERT INTO `item_graphic_cards`").
		ExpectExec().
		WillReturnResult(sqlmock.NewResult(51, 1))
	mock.ExpectCommit()

	r := NewGraphicCard()
	err := r.Handle(context.Background(), rctx, []fieldbag.Item{first})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleDeletesStaleLinkOnly(t *testing.T) {
	db, mock := setupMockDB(t)
	rctx := testContext(db)

	mock.ExpectPrepare("SELECT link.id AS id(.+)FROM item_graphic_cards AS link").
		ExpectQuery().
		WillReturnRows(sqlmock.NewRows(existingDeviceColumns()).
			AddRow(50, true, "Old Card", 0, 9).
			AddRow(60, false, "Manual Card", 0, 10))

	// Only the dynamic link goes, by its own id; the master record and
	// the manually entered link are untouched.
	mock.ExpectPrepare("DELETE FROM item_graphic_cards WHERE id").
		ExpectExec().
		WithArgs(int64(50)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	r := NewGraphicCard()
	err := r.Handle(context.Background(), rctx, nil)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleReassignment(t *testing.T) {
	db, mock := setupMockDB(t)
	r := NewGraphicCard()

	// The card moves from asset 12 to asset 13: the new asset links the
	// existing master, the old asset's dynamic link is deleted, and no
	// second master record appears.
	newOwner := testContext(db)
	newOwner.ItemID = 13
	incoming := fieldbag.FromMap(map[string]any{"designation": "GeForce GTX 1650"})
	incoming.Set("manufacturers_id", fieldbag.Number(3))

	mock.ExpectPrepare("SELECT link.id AS id(.+)FROM item_graphic_cards AS link").
		ExpectQuery().
		WithArgs("Computer", int64(13)).
		WillReturnRows(sqlmock.NewRows(existingDeviceColumns()))
	mock.ExpectPrepare("SELECT (.+) FROM `graphic_cards`").
		ExpectQuery().
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(9))
	mock.ExpectBegin()
	mock.ExpectPrepare("INSERT INTO `item_graphic_cards`")
	mock.ExpectPrepare("INSERT INTO `item_graphic_cards`").
		ExpectExec().
		WillReturnResult(sqlmock.NewResult(52, 1))
	mock.ExpectCommit()

	require.NoError(t, r.Handle(context.Background(), newOwner, []fieldbag.Item{incoming}))

	// The link query was already prepared during the first call, so only
	// the execution shows up here.
	oldOwner := testContext(db)
	mock.ExpectQuery("SELECT link.id AS id(.+)FROM item_graphic_cards AS link").
		WithArgs("Computer", int64(12)).
		WillReturnRows(sqlmock.NewRows(existingDeviceColumns()).
			AddRow(50, true, "GeForce GTX 1650", 3, 9))
	mock.ExpectPrepare("DELETE FROM item_graphic_cards WHERE id").
		ExpectExec().
		WithArgs(int64(50)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, r.Handle(context.Background(), oldOwner, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckConf(t *testing.T) {
	assert.True(t, NewGraphicCard().CheckConf(reconcile.Conf{ComponentGraphicCard: true}))
	assert.False(t, NewGraphicCard().CheckConf(reconcile.Conf{}))
	assert.Equal(t, "videos", NewGraphicCard().Category())
	assert.Equal(t, "sounds", NewSoundCard().Category())
}
