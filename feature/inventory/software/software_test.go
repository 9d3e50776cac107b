package software

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
		Conf:     reconcile.Conf{ImportSoftware: true, SoftwareEntity: -1},
		Itemtype: "Computer",
		ItemID:   12,
		EntityID: 0,
	}
}

func item(fields map[string]any) fieldbag.Item {
	return fieldbag.FromMap(fields)
}

func existingLinkColumns() []string {
	return []string{"id", "software", "version", "arch", "manufacturers_id", "entities_id", "operatingsystems_id"}
}

func TestPrepareFieldMappingAndFallback(t *testing.T) {
	db, mock := setupMockDB(t)
	rctx := testContext(db)

	mock.ExpectQuery("SELECT (.+) FROM `manufacturers`").
		WithArgs("Mozilla", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(5, "Mozilla"))

	r := New(nil)
	prepared := r.Prepare(rctx, []fieldbag.Item{
		item(map[string]any{"name": "Firefox", "publisher": "Mozilla", "version": "118.0"}),
		item(map[string]any{"guid": "{ABC-123}", "version": "1.0"}),
		item(map[string]any{"version": "2.0"}),
	})

	require.Len(t, prepared, 2)
	assert.Equal(t, "Firefox", prepared[0].GetString("name"))
	assert.Equal(t, "Mozilla", prepared[0].GetString("manufacturer"))
	assert.Equal(t, 5, prepared[0].GetInt("manufacturers_id"))
	assert.Equal(t, "{ABC-123}", prepared[1].GetString("name"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPrepareRuleExclusion(t *testing.T) {
	db, _ := setupMockDB(t)
	rctx := testContext(db)

	r := New(reconcile.NewDictionaryRules([]reconcile.DictionaryRule{
		{MatchPrefix: "kb", Exclude: true},
	}))
	prepared := r.Prepare(rctx, []fieldbag.Item{
		item(map[string]any{"name": "KB5021233"}),
		item(map[string]any{"name": "7-Zip"}),
	})

	require.Len(t, prepared, 1)
	assert.Equal(t, "7-Zip", prepared[0].GetString("name"))
}

func TestPrepareManufacturerPreferringDedup(t *testing.T) {
	db, mock := setupMockDB(t)
	rctx := testContext(db)

	mock.ExpectQuery("SELECT (.+) FROM `manufacturers`").
		WithArgs("Mozilla", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(5, "Mozilla"))

	r := New(nil)
	prepared := r.Prepare(rctx, []fieldbag.Item{
		item(map[string]any{"name": "Firefox", "version": "118.0"}),
		item(map[string]any{"name": "Firefox", "version": "118.0", "publisher": "Mozilla"}),
	})

	require.Len(t, prepared, 1)
	assert.Equal(t, 5, prepared[0].GetInt("manufacturers_id"))
}

func TestHandleCreatesCatalogAndLink(t *testing.T) {
	db, mock := setupMockDB(t)
	rctx := testContext(db)

	incoming := item(map[string]any{"name": "Firefox", "version": "118.0"})
	incoming.Set("manufacturers_id", fieldbag.Number(5))
	incoming.Set("entities_id", fieldbag.Number(0))

	mock.ExpectPrepare("SELECT isv.id AS id(.+)FROM item_software_versions AS isv").
		ExpectQuery().
		WithArgs("Computer", int64(12), true).
		WillReturnRows(sqlmock.NewRows(existingLinkColumns()))

	mock.ExpectPrepare("SELECT (.+) FROM `softwares`").
		ExpectQuery().
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectBegin()
	mock.ExpectPrepare("INSERT INTO `softwares`")
	mock.ExpectPrepare("INSERT INTO `softwares`").
		ExpectExec().
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectCommit()

	mock.ExpectPrepare("SELECT (.+) FROM `software_versions`").
		ExpectQuery().
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectBegin()
	mock.ExpectPrepare("INSERT INTO `software_versions`")
	mock.ExpectPrepare("INSERT INTO `software_versions`").
		ExpectExec().
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectCommit()

	mock.ExpectBegin()
	mock.ExpectPrepare("INSERT INTO `item_software_versions`")
	mock.ExpectPrepare("INSERT INTO `item_software_versions`").
		ExpectExec().
		WillReturnResult(sqlmock.NewResult(99, 1))
	mock.ExpectCommit()

	r := New(nil)
	err := r.Handle(context.Background(), rctx, []fieldbag.Item{incoming})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleIdempotentResubmission(t *testing.T) {
	db, mock := setupMockDB(t)
	rctx := testContext(db)

	incoming := item(map[string]any{"name": "Firefox", "version": "118.0"})
	incoming.Set("manufacturers_id", fieldbag.Number(5))
	incoming.Set("entities_id", fieldbag.Number(0))

	// The existing link produces the same comparison key, so no writes
	// happen at all.
	mock.ExpectPrepare("SELECT isv.id AS id(.+)FROM item_software_versions AS isv").
		ExpectQuery().
		WithArgs("Computer", int64(12), true).
		WillReturnRows(sqlmock.NewRows(existingLinkColumns()).
			AddRow(77, "Firefox", "118.0", "", 5, 0, 0))

	r := New(nil)
	err := r.Handle(context.Background(), rctx, []fieldbag.Item{incoming})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleDeletesStaleDynamicLinks(t *testing.T) {
	db, mock := setupMockDB(t)
	rctx := testContext(db)

	mock.ExpectPrepare("SELECT isv.id AS id(.+)FROM item_software_versions AS isv").
		ExpectQuery().
		WithArgs("Computer", int64(12), true).
		WillReturnRows(sqlmock.NewRows(existingLinkColumns()).
			AddRow(77, "Old Tool", "1.0", "", 0, 0, 0))

	mock.ExpectBegin()
	mock.ExpectPrepare("DELETE FROM `item_software_versions`")
	mock.ExpectPrepare("DELETE FROM `item_software_versions`").
		ExpectExec().
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	r := New(nil)
	err := r.Handle(context.Background(), rctx, nil)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandlePartialSubmissionKeepsStaleLinks(t *testing.T) {
	db, mock := setupMockDB(t)
	rctx := testContext(db)
	rctx.Partial = true

	// One existing dynamic link, zero submitted items: the partial scan
	// says nothing about absence, so no delete is issued.
	mock.ExpectPrepare("SELECT isv.id AS id(.+)FROM item_software_versions AS isv").
		ExpectQuery().
		WithArgs("Computer", int64(12), true).
		WillReturnRows(sqlmock.NewRows(existingLinkColumns()).
			AddRow(77, "Old Tool", "1.0", "", 0, 0, 0))

	r := New(nil)
	err := r.Handle(context.Background(), rctx, nil)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleIntraBatchDuplicates(t *testing.T) {
	db, mock := setupMockDB(t)
	rctx := testContext(db)

	first := item(map[string]any{"name": "Firefox", "version": "118.0"})
	first.Set("manufacturers_id", fieldbag.Number(5))
	first.Set("entities_id", fieldbag.Number(0))
	second := item(map[string]any{"name": "Firefox", "version": "118.0"})
	second.Set("manufacturers_id", fieldbag.Number(5))
	second.Set("entities_id", fieldbag.Number(0))

	mock.ExpectPrepare("SELECT isv.id AS id(.+)FROM item_software_versions AS isv").
		ExpectQuery().
		WillReturnRows(sqlmock.NewRows(existingLinkColumns()))

	mock.ExpectPrepare("SELECT (.+) FROM `softwares`").
		ExpectQuery().
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(42, "Firefox"))
	mock.ExpectPrepare("SELECT (.+) FROM `software_versions`").
		ExpectQuery().
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(7, "118.0"))
	mock.ExpectBegin()
	mock.ExpectPrepare("INSERT INTO `item_software_versions`")
	mock.ExpectPrepare("INSERT INTO `item_software_versions`").
		ExpectExec().
		WillReturnResult(sqlmock.NewResult(99, 1))
	mock.ExpectCommit()

	r := New(nil)
	err := r.Handle(context.Background(), rctx, []fieldbag.Item{first, second})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParseInstallDate(t *testing.T) {
	assert.Nil(t, parseInstallDate(""))
	assert.Nil(t, parseInstallDate("not a date"))

	ts := parseInstallDate("2023-06-15")
	require.NotNil(t, ts)
	assert.Equal(t, 2023, ts.Year())

	ts = parseInstallDate("15/06/2023")
	require.NotNil(t, ts)
	assert.Equal(t, 6, int(ts.Month()))
}

func TestCheckConf(t *testing.T) {
	r := New(nil)
	assert.True(t, r.CheckConf(reconcile.Conf{ImportSoftware: true}))
	assert.False(t, r.CheckConf(reconcile.Conf{ImportSoftware: false}))
	assert.Equal(t, "softwares", r.Category())
}
