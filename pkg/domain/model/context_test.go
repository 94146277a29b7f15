package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/eudai-lab/eudaimon/pkg/domain/model"
)

func TestParsePreferences(t *testing.T) {
	t.Run("recognized keys", func(t *testing.T) {
		prefs := model.ParsePreferences([]string{
			"available_time_min=25",
			"focus_area=Sleep",
			"time_of_day=Morning",
		})

		gt.Value(t, prefs.AvailableMinutes).Equal(25)
		gt.Value(t, prefs.FocusArea).Equal("sleep")
		gt.Value(t, prefs.TimeOfDay).Equal("morning")
	})

	t.Run("defaults without input", func(t *testing.T) {
		prefs := model.ParsePreferences(nil)
		gt.Value(t, prefs.AvailableMinutes).Equal(model.DefaultAvailableMinutes)
		gt.Value(t, prefs.FocusArea).Equal("")
	})

	t.Run("duplicate keys last wins", func(t *testing.T) {
		prefs := model.ParsePreferences([]string{
			"available_time_min=10",
			"available_time_min=20",
		})
		gt.Value(t, prefs.AvailableMinutes).Equal(20)
	})

	t.Run("time budget is clamped", func(t *testing.T) {
		gt.Value(t, model.ParsePreferences([]string{"available_time_min=0"}).AvailableMinutes).Equal(1)
		gt.Value(t, model.ParsePreferences([]string{"available_time_min=-5"}).AvailableMinutes).Equal(1)
		gt.Value(t, model.ParsePreferences([]string{"available_time_min=9999"}).AvailableMinutes).Equal(model.MaxAvailableMinutes)
	})

	t.Run("malformed pairs are skipped", func(t *testing.T) {
		prefs := model.ParsePreferences([]string{
			"no-equals-sign",
			"=empty-key",
			"empty-value=",
			"available_time_min=not-a-number",
		})
		gt.Value(t, prefs.AvailableMinutes).Equal(model.DefaultAvailableMinutes)
		gt.Value(t, len(prefs.Unknown)).Equal(0)
	})

	t.Run("unknown keys are preserved", func(t *testing.T) {
		prefs := model.ParsePreferences([]string{"favorite_color=blue"})
		gt.Value(t, prefs.Unknown["favorite_color"]).Equal("blue")
	})

	t.Run("keys are case insensitive", func(t *testing.T) {
		prefs := model.ParsePreferences([]string{"Available_Time_Min=30"})
		gt.Value(t, prefs.AvailableMinutes).Equal(30)
	})
}

func TestNewUserContext(t *testing.T) {
	uc := model.NewUserContext("user-1", "tired", "Asia/Tokyo", []string{"available_time_min=10"})

	gt.Value(t, uc.UserID.String()).Equal("user-1")
	gt.Value(t, uc.Preferences.AvailableMinutes).Equal(10)
	gt.Array(t, uc.RawPreferences).Length(1)
}
