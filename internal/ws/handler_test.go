package ws

import (
	"testing"

	"github.com/loltimeflash/server/internal/game"
	"github.com/loltimeflash/server/internal/protocol"
)

func TestToCommand(t *testing.T) {
	cases := []struct {
		name    string
		msg     protocol.ClientMessage
		want    game.Command
		wantErr bool
	}{
		{
			name: "use flash",
			msg:  protocol.ClientMessage{Type: protocol.MsgUseFlash, Role: "TOP"},
			want: game.Command{Type: game.CmdUseFlash, Role: game.RoleTop},
		},
		{
			name: "cancel flash",
			msg:  protocol.ClientMessage{Type: protocol.MsgCancelFlash, Role: "SUPPORT"},
			want: game.Command{Type: game.CmdCancelFlash, Role: game.RoleSupport},
		},
		{
			name: "toggle item",
			msg:  protocol.ClientMessage{Type: protocol.MsgToggleItem, Role: "MID", Item: "cosmicInsight"},
			want: game.Command{Type: game.CmdToggleItem, Role: game.RoleMid, Item: game.ItemCosmicInsight},
		},
		{
			name: "adjust timer",
			msg:  protocol.ClientMessage{Type: protocol.MsgAdjustTimer, Role: "ADC", AdjustmentSeconds: -10},
			want: game.Command{Type: game.CmdAdjustTimer, Role: game.RoleADC, AdjustmentSeconds: -10},
		},
		{
			name:    "bad role",
			msg:     protocol.ClientMessage{Type: protocol.MsgUseFlash, Role: "FEED"},
			wantErr: true,
		},
		{
			name:    "bad item",
			msg:     protocol.ClientMessage{Type: protocol.MsgToggleItem, Role: "TOP", Item: "homeguards"},
			wantErr: true,
		},
		{
			name:    "adjustment above bound",
			msg:     protocol.ClientMessage{Type: protocol.MsgAdjustTimer, Role: "TOP", AdjustmentSeconds: 11},
			wantErr: true,
		},
		{
			name:    "adjustment below bound",
			msg:     protocol.ClientMessage{Type: protocol.MsgAdjustTimer, Role: "TOP", AdjustmentSeconds: -11},
			wantErr: true,
		},
		{
			name:    "unknown type",
			msg:     protocol.ClientMessage{Type: "Teleport"},
			wantErr: true,
		},
		{
			name: "update champions",
			msg: protocol.ClientMessage{
				Type:        protocol.MsgUpdateChampions,
				RoleMapping: map[string]game.Champion{"JUNGLE": {ChampionID: 64}},
			},
			want: game.Command{
				Type:        game.CmdUpdateChampions,
				RoleMapping: map[game.Role]game.Champion{game.RoleJungle: {ChampionID: 64}},
			},
		},
		{
			name: "update champions with bad role key",
			msg: protocol.ClientMessage{
				Type:        protocol.MsgUpdateChampions,
				RoleMapping: map[string]game.Champion{"FEED": {ChampionID: 64}},
			},
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := toCommand(tc.msg)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if got.Type != tc.want.Type || got.Role != tc.want.Role || got.Item != tc.want.Item ||
				got.AdjustmentSeconds != tc.want.AdjustmentSeconds {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
			if tc.want.RoleMapping != nil {
				if len(got.RoleMapping) != len(tc.want.RoleMapping) {
					t.Fatalf("role mapping: got %+v", got.RoleMapping)
				}
				for role, champ := range tc.want.RoleMapping {
					if got.RoleMapping[role] != champ {
						t.Fatalf("role mapping[%s]: got %+v", role, got.RoleMapping[role])
					}
				}
			}
		})
	}
}
