package engine

import (
	"fmt"
	"math"

	"github.com/vovakirdan/well-escape/internal/agent"
	"github.com/vovakirdan/well-escape/internal/board"
	"github.com/vovakirdan/well-escape/internal/core"
)

// Each grid cell is drawn two characters wide.
const cellW = 2

// Render draws the well, the HUD and any overlay into dst.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()

	cols, rows := g.grid.Cols(), g.grid.Rows()
	wellW := cols*cellW + 2
	wellH := rows + 2
	if dst.Width() < wellW || dst.Height() < wellH {
		g.renderOverlay(dst, "Window too small", fmt.Sprintf("Need %dx%d", wellW, wellH))
		return
	}

	g.renderWell(dst)
	g.renderHUD(dst, wellW+2)

	switch {
	case g.won:
		g.renderOverlay(dst, "You escaped!", fmt.Sprintf("Score: %d  R to restart", g.stats.Score))
	case g.gameOver:
		g.renderOverlay(dst, "Game Over: "+string(g.cause), "Press R to restart")
	case g.paused:
		g.renderOverlay(dst, "Paused", "Press P to continue")
	}
}

func (g *Game) renderWell(dst *core.Screen) {
	cols, rows := g.grid.Cols(), g.grid.Rows()
	escape := g.cfg.Board.EscapeRows
	dst.DrawBox(core.NewRect(0, 0, cols*cellW+2, rows+2))
	for y := 0; y < escape; y++ {
		dst.SetCell(0, y+1, ':', core.ColorBrightGreen)
		dst.SetCell(cols*cellW+1, y+1, ':', core.ColorBrightGreen)
	}

	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			if b := g.grid.At(x, y); b != board.Empty {
				g.drawCell(dst, x, y, "[]", b.ShapeType().Color())
			} else if y < escape {
				g.drawCell(dst, x, y, " .", core.ColorGreen)
			}
		}
	}

	if g.hasPiece && g.agent.HasTarget && g.agent.Mode == agent.ModeNormal {
		ghost := g.piece.WithState(g.agent.Target)
		for _, c := range ghost.Cells() {
			g.drawCell(dst, c.DX, c.DY, "::", core.ColorGray)
		}
	}
	if g.hasPiece {
		for _, c := range g.piece.Cells() {
			g.drawCell(dst, c.DX, c.DY, "[]", g.piece.Color())
		}
	}
	g.renderPlayer(dst)
}

func (g *Game) renderPlayer(dst *core.Screen) {
	col := g.solver.Column(&g.player)
	top, bot := g.solver.RowSpan(&g.player)
	color := core.ColorBrightYellow
	head, body := "()", "/\\"
	if g.player.Dead {
		color = core.ColorBrightRed
		head, body = "xx", "xx"
	}
	if g.player.FacingLeft && !g.player.Dead {
		head = "(("
	}
	// Rows the player only grazes by a few pixels are skipped.
	bs := g.cfg.Board.BlockSize
	if frac := g.player.Y/bs - math.Floor(g.player.Y/bs); frac > 0.5 && top < bot {
		top++
	}
	well := core.NewRect(0, 0, g.grid.Cols(), g.grid.Rows())
	for y := top; y <= bot; y++ {
		if !well.Contains(col, y) {
			continue
		}
		text := body
		if y == top {
			text = head
		}
		g.drawCell(dst, col, y, text, color)
	}
}

func (g *Game) drawCell(dst *core.Screen, x, y int, text string, c core.Color) {
	dst.DrawTextColor(1+x*cellW, 1+y, text, c)
}

func (g *Game) renderHUD(dst *core.Screen, x int) {
	line := 1
	put := func(text string, c core.Color) {
		if line < dst.Height() {
			dst.DrawTextColor(x, line, text, c)
		}
		line++
	}

	put("WELL ESCAPE", core.ColorBrightCyan)
	line++
	put(fmt.Sprintf("Score  %d", g.stats.Score), core.ColorWhite)
	put(fmt.Sprintf("Lines  %d", g.stats.Lines), core.ColorWhite)
	put(fmt.Sprintf("Pieces %d", g.stats.Pieces), core.ColorWhite)
	put(fmt.Sprintf("Time   %.1fs", float64(g.stats.Ticks)/float64(g.tickRate)), core.ColorWhite)
	line++
	put(fmt.Sprintf("Difficulty %s x%.2g", g.preset, g.speed), core.ColorDefault)
	put(fmt.Sprintf("Next       %s", g.bag.Peek()), g.bag.Peek().Color())
	put(fmt.Sprintf("Agent      %s", g.agent.Mode), core.ColorDefault)
	put(fmt.Sprintf("Retargets  %d", g.agent.Retargets), core.ColorDefault)

	switch {
	case g.timers.Sabotage > 0:
		put(fmt.Sprintf("Sabotage   active %.1fs", g.timers.Sabotage), core.ColorBrightMagenta)
	case g.timers.SabotageCooldown > 0:
		put(fmt.Sprintf("Sabotage   ready in %.1fs", g.timers.SabotageCooldown), core.ColorGray)
	default:
		put("Sabotage   ready (X)", core.ColorBrightGreen)
	}
	if g.diff.PlayerCompletesLine && len(g.plugged) > 0 {
		put(fmt.Sprintf("Plugging!  %.1fs", max(0, g.timers.PlayerLine)), core.ColorBrightRed)
	}
	if g.godMode {
		put("GOD MODE", core.ColorOrange)
	}
}

// renderOverlay draws a centered two-line message box.
func (g *Game) renderOverlay(dst *core.Screen, line1, line2 string) {
	w := max(len([]rune(line1)), len([]rune(line2))) + 4
	h := 5
	box := core.NewRect((dst.Width()-w)/2, (dst.Height()-h)/2, w, h)
	dst.DrawRect(core.NewRect(box.X+1, box.Y+1, w-2, h-2), ' ')
	dst.DrawBox(box)
	_, cy := box.Center()
	dst.DrawTextCentered(cy-1, line1)
	dst.DrawTextCentered(cy+1, line2)
}
