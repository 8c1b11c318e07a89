package chat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStripCodeFence(t *testing.T) {
	require.Equal(t, `{"text":"GENERAL"}`, stripCodeFence("```json\n{\"text\":\"GENERAL\"}\n```"))
	require.Equal(t, `{"text":"GENERAL"}`, stripCodeFence("```\n{\"text\":\"GENERAL\"}\n```"))
	require.Equal(t, `{"text":"GENERAL"}`, stripCodeFence(`  {"text":"GENERAL"}  `))
}

func TestParseClassification(t *testing.T) {
	require.Equal(t, QueryTypeMenu, parseClassification(`{"text":"MENU_QUERY"}`))
	require.Equal(t, QueryTypeRestaurant, parseClassification("```json\n{\"text\":\"RESTAURANT_QUERY\"}\n```"))
	require.Equal(t, QueryTypeGeneral, parseClassification(`{"text":"GENERAL"}`))

	// Substring fallback on unparseable output.
	require.Equal(t, QueryTypeMenu, parseClassification("I think this is a MENU_QUERY."))
	require.Equal(t, QueryTypeRestaurant, parseClassification("restaurant_query fits best"))

	// Nothing recoverable defaults to GENERAL.
	require.Equal(t, QueryTypeGeneral, parseClassification("no idea"))
	require.Equal(t, QueryTypeGeneral, parseClassification(""))
}

func TestParseRestaurantResponse(t *testing.T) {
	candidates := map[int32]bool{1: true, 2: true, 3: true, 4: true}

	t.Run("caps at two ids", func(t *testing.T) {
		resp, err := parseRestaurantResponse(`{"text":"Here you go","restroIds":[1,2,3,4]}`, candidates)
		require.NoError(t, err)
		require.Equal(t, []int32{1, 2}, resp.RestroIDs)
	})

	t.Run("drops unknown ids", func(t *testing.T) {
		resp, err := parseRestaurantResponse(`{"text":"Here","restroIds":[99,2]}`, candidates)
		require.NoError(t, err)
		require.Equal(t, []int32{2}, resp.RestroIDs)
	})

	t.Run("empty ids is valid", func(t *testing.T) {
		resp, err := parseRestaurantResponse(`{"text":"Nothing fits, sorry"}`, candidates)
		require.NoError(t, err)
		require.Empty(t, resp.RestroIDs)
	})

	t.Run("missing text is an error", func(t *testing.T) {
		_, err := parseRestaurantResponse(`{"restroIds":[1]}`, candidates)
		require.Error(t, err)
	})

	t.Run("non-JSON is an error", func(t *testing.T) {
		_, err := parseRestaurantResponse(`Sure! Try Luna Trattoria.`, candidates)
		require.Error(t, err)
	})
}

func TestParseMenuResponse(t *testing.T) {
	t.Run("caps item lists at five", func(t *testing.T) {
		raw := `{"text":"Lots of options","items1":[{"id":1,"name":"a"},{"id":2,"name":"b"},{"id":3,"name":"c"},{"id":4,"name":"d"},{"id":5,"name":"e"},{"id":6,"name":"f"}],"items2":[{"id":7,"name":"g"},{"id":8,"name":"h"},{"id":9,"name":"i"},{"id":10,"name":"j"},{"id":11,"name":"k"},{"id":12,"name":"l"}]}`
		resp, err := parseMenuResponse(raw)
		require.NoError(t, err)
		require.Len(t, resp.Items1, 5)
		require.Len(t, resp.Items2, 5)
		require.Equal(t, "a", resp.Items1[0].Name)
	})

	t.Run("fenced response", func(t *testing.T) {
		resp, err := parseMenuResponse("```json\n{\"text\":\"Try this\",\"items1\":[{\"id\":7,\"name\":\"Club Sandwich\"}]}\n```")
		require.NoError(t, err)
		require.Equal(t, "Try this", resp.Text)
		require.Equal(t, []RecommendedItem{{ID: 7, Name: "Club Sandwich"}}, resp.Items1)
	})

	t.Run("missing text is an error", func(t *testing.T) {
		_, err := parseMenuResponse(`{"items1":[]}`)
		require.Error(t, err)
	})
}
