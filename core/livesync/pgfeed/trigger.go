package pgfeed

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// notifyFunctionDDL creates the shared trigger function. The payload
// carries the changed row's flat columns only (OLD for deletes, NEW
// otherwise); joined data is never sent, consumers re-fetch instead.
// NOTIFY payloads are capped at 8000 bytes, which flat catalog rows stay
// well under.
const notifyFunctionDDL = `
CREATE OR REPLACE FUNCTION catalog_notify() RETURNS trigger AS $$
DECLARE
	payload text;
BEGIN
	IF TG_OP = 'DELETE' THEN
		payload := json_build_object('op', 'delete', 'table', TG_TABLE_NAME, 'record', row_to_json(OLD))::text;
	ELSIF TG_OP = 'UPDATE' THEN
		payload := json_build_object('op', 'update', 'table', TG_TABLE_NAME, 'record', row_to_json(NEW))::text;
	ELSE
		payload := json_build_object('op', 'insert', 'table', TG_TABLE_NAME, 'record', row_to_json(NEW))::text;
	END IF;
	PERFORM pg_notify('catalog_' || TG_TABLE_NAME, payload);
	RETURN NULL;
END;
$$ LANGUAGE plpgsql;
`

// TriggerDDL returns the statements that attach the notify trigger to a
// table. The DROP keeps installation idempotent.
func TriggerDDL(table string) []string {
	return []string{
		fmt.Sprintf(`DROP TRIGGER IF EXISTS catalog_notify_trigger ON %s`, table),
		fmt.Sprintf(`CREATE TRIGGER catalog_notify_trigger
AFTER INSERT OR UPDATE OR DELETE ON %s
FOR EACH ROW EXECUTE FUNCTION catalog_notify()`, table),
	}
}

// InstallTriggers creates the notify function and attaches the trigger to
// every watched table. Safe to run at every startup.
func InstallTriggers(ctx context.Context, db *gorm.DB, tables []string) error {
	if err := db.WithContext(ctx).Exec(notifyFunctionDDL).Error; err != nil {
		return fmt.Errorf("failed to create notify function: %w", err)
	}
	for _, table := range tables {
		for _, stmt := range TriggerDDL(table) {
			if err := db.WithContext(ctx).Exec(stmt).Error; err != nil {
				return fmt.Errorf("failed to install trigger on %s: %w", table, err)
			}
		}
	}
	return nil
}
